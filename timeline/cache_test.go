package timeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CrestNiraj12/terminalfeed/domain"
	"github.com/CrestNiraj12/terminalfeed/infra/position"
)

func TestCache_EqualSourcesShareState(t *testing.T) {
	c := NewCache()
	session := Session{Timeline: &stubTimeline{pages: [][]domain.Post{posts("a", "b")}}, AccountID: "me"}

	first := c.ViewModel(domain.List("42", "Friends"), session)
	second := c.ViewModel(domain.List("42", "Friends"), session)
	if first != second {
		t.Fatal("expected the same state for equal sources")
	}

	first.LoadInitial(context.Background(), false)
	if got := postIDs(second.Posts()); len(got) != 2 || got[0] != "a" {
		t.Fatalf("expected load visible through second handle, got %v", got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one entry, got %d", c.Len())
	}
}

func TestCache_ViewModelRefreshesSession(t *testing.T) {
	c := NewCache()
	old := &stubTimeline{pages: [][]domain.Post{posts("old")}}
	fresh := &stubTimeline{pages: [][]domain.Post{posts("fresh")}}

	st := c.ViewModel(domain.Home(), Session{Timeline: old, AccountID: "me"})
	c.ViewModel(domain.Home(), Session{Timeline: fresh, AccountID: "me"})
	st.LoadInitial(context.Background(), false)

	if old.calls.Load() != 0 || fresh.calls.Load() != 1 {
		t.Fatalf("expected fetch through latest session, old=%d fresh=%d", old.calls.Load(), fresh.calls.Load())
	}
}

func TestCache_PruneDiscardsState(t *testing.T) {
	c := NewCache()
	session := Session{Timeline: &stubTimeline{pages: [][]domain.Post{posts("a")}}, AccountID: "me"}

	home := c.ViewModel(domain.Home(), session)
	list := c.ViewModel(domain.List("7", "Work"), session)
	home.LoadInitial(context.Background(), false)
	list.LoadInitial(context.Background(), false)

	c.PruneSources(domain.Home())

	if _, ok := c.Lookup(domain.List("7", "Work")); ok {
		t.Fatal("expected pruned source to be gone")
	}
	if got, ok := c.Lookup(domain.Home()); !ok || got != home {
		t.Fatal("expected retained source to keep its state")
	}

	again := c.ViewModel(domain.List("7", "Work"), session)
	if again == list {
		t.Fatal("expected a new state after prune")
	}
	if again.Status() != StatusIdle || len(again.Posts()) != 0 {
		t.Fatalf("expected fresh idle state, got %s with %d posts", again.Status(), len(again.Posts()))
	}
}

func TestCache_RemoveAll(t *testing.T) {
	c := NewCache()
	session := Session{Timeline: &stubTimeline{}, AccountID: "me"}
	home := c.ViewModel(domain.Home(), session)
	c.ViewModel(domain.TrendingPosts(), session)

	c.RemoveAll()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
	if c.ViewModel(domain.Home(), session) == home {
		t.Fatal("expected new state after RemoveAll")
	}
}

func TestCache_WarmUpLoadsEverySource(t *testing.T) {
	c := NewCache()
	tl := &stubTimeline{pages: [][]domain.Post{posts("a", "b")}}
	session := Session{Timeline: tl, AccountID: "me"}
	sources := []domain.ContentSource{
		domain.Home(),
		domain.TrendingPosts(),
		domain.List("1", "One"),
		domain.Feed("tag:golang", "Go"),
		domain.TrendingFeed("rust", "Rust"),
	}

	if err := c.WarmUp(context.Background(), session, sources...); err != nil {
		t.Fatalf("warm up: %v", err)
	}
	for _, src := range sources {
		st, ok := c.Lookup(src)
		if !ok || st.Status() != StatusLoaded {
			t.Fatalf("%s: expected loaded state", src.Identifier())
		}
	}
	if got := tl.calls.Load(); got != int32(len(sources)) {
		t.Fatalf("expected %d fetches, got %d", len(sources), got)
	}
}

func TestCache_WarmUpJoinsErrors(t *testing.T) {
	c := NewCache()
	tl := &stubTimeline{err: errors.New("boom")}
	session := Session{Timeline: tl, AccountID: "me"}

	err := c.WarmUp(context.Background(), session, domain.Home(), domain.TrendingPosts())
	if err == nil {
		t.Fatal("expected joined error")
	}
	for _, id := range []string{"home", "trending-posts"} {
		if !strings.Contains(err.Error(), id) {
			t.Fatalf("expected %q in %v", id, err)
		}
	}
}

func TestColdRestoreAcrossRelaunch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "positions.db")
	tl := &stubTimeline{pages: [][]domain.Post{posts("p1", "p2", "p3")}}
	ctx := context.Background()

	// First launch: scroll down one post.
	backend, err := position.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store := position.NewStore(backend, time.Hour)
	cache := NewCache()
	st := cache.ViewModel(domain.Home(), Session{Timeline: tl, Positions: store, AccountID: "me"})
	st.LoadInitial(ctx, false)
	if id, ok := st.TargetForInitialDisplay(); !ok || id != "p1" {
		t.Fatalf("expected top of feed first, got %q", id)
	}
	st.PostDidAppear("p1")
	st.UserDidInteract()
	st.PostDidAppear("p2")
	st.PostDidDisappear("p1")
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Second launch: fresh cache and store on the same file.
	backend, err = position.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	store = position.NewStore(backend, time.Hour)
	defer store.Close()
	cache = NewCache()
	st = cache.ViewModel(domain.Home(), Session{Timeline: tl, Positions: store, AccountID: "me"})
	st.LoadInitial(ctx, false)

	if !st.IsRestoringPosition() {
		t.Fatal("expected cold restore")
	}
	id, ok := st.TargetForInitialDisplay()
	if !ok || id != "p2" {
		t.Fatalf("expected restore to p2, got %q", id)
	}
	st.CompletePositionRestore(id)
	if st.IsRestoringPosition() {
		t.Fatal("expected restore completed")
	}
	if cur, _ := st.CurrentScrollPosition(); cur != "p2" {
		t.Fatalf("expected current position p2, got %q", cur)
	}
}
