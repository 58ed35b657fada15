package feed

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/terminalfeed/domain"
	"github.com/CrestNiraj12/terminalfeed/timeline"
)

type stubTimeline struct {
	posts []domain.Post
	err   error
}

func (s stubTimeline) FetchSource(context.Context, domain.ContentSource) ([]domain.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.posts, nil
}

type recordingPositions struct {
	mu     sync.Mutex
	saved  map[string]string
	writes []string
}

func newRecordingPositions() *recordingPositions {
	return &recordingPositions{saved: map[string]string{}}
}

func (r *recordingPositions) Position(_ context.Context, sourceID, accountID string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.saved[sourceID+"|"+accountID]
	return id, ok, nil
}

func (r *recordingPositions) DebouncedSet(sourceID, accountID, postID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved[sourceID+"|"+accountID] = postID
	r.writes = append(r.writes, postID)
}

func (r *recordingPositions) lastWrite() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.writes) == 0 {
		return ""
	}
	return r.writes[len(r.writes)-1]
}

func (r *recordingPositions) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func makePosts(ids ...string) []domain.Post {
	out := make([]domain.Post, len(ids))
	for i, id := range ids {
		out[i] = domain.Post{
			ID:       id,
			Author:   "Author " + id,
			Username: "user" + id,
			Content:  "hello " + id,
			URL:      "https://example.social/@user/" + id,
		}
	}
	return out
}

// newTestModel builds a model that shows exactly one post per screen.
func newTestModel(tl stubTimeline, pos *recordingPositions, sources ...domain.ContentSource) (Model, *timeline.Cache) {
	if len(sources) == 0 {
		sources = []domain.ContentSource{domain.Home(), domain.TrendingPosts()}
	}
	cache := timeline.NewCache()
	session := timeline.Session{Timeline: tl, AccountID: "me"}
	if pos != nil {
		session.Positions = pos
	}
	m := New(cache, session, sources, "")
	m.height = reservedLines + linesPerPost
	return m, cache
}

func runLoad(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.loadActive(false)
	if cmd == nil {
		t.Fatalf("expected load command")
	}
	m, _ = m.Update(cmd())
	return m
}

// collect runs cmd and any batched commands, returning the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}
