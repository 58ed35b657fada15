package timeline

import (
	"context"
	"slices"
	"sync"

	"github.com/CrestNiraj12/terminalfeed/app"
	"github.com/CrestNiraj12/terminalfeed/domain"
	"github.com/CrestNiraj12/terminalfeed/infra/logging"
)

// LoadingStatus is the fetch lifecycle of one source.
type LoadingStatus int

const (
	StatusIdle LoadingStatus = iota
	StatusLoading
	StatusLoaded
)

func (s LoadingStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	default:
		return "idle"
	}
}

// Session carries the collaborators a State talks to. It may change over
// the lifetime of a cached State (new client, re-verified account).
type Session struct {
	Timeline  app.TimelineService
	Positions app.PositionStore
	AccountID string
}

// Snapshot is a copy of the observable state taken under the lock.
type Snapshot struct {
	Source                domain.ContentSource
	Posts                 []domain.Post
	Status                LoadingStatus
	Err                   error
	IsRestoringPosition   bool
	PendingRestoreID      string
	CurrentScrollPosition string
}

// State owns one source's posts, loading status and scroll restoration.
// All fields are guarded by mu; only the fetch and the saved-position
// lookup run without it.
type State struct {
	mu      sync.Mutex
	source  domain.ContentSource
	session Session

	posts  []domain.Post
	index  map[string]int
	status LoadingStatus
	err    error
	reqSeq int

	// Restoration state. Empty string means "none".
	restoring        bool
	pendingRestoreID string
	scrollTargetID   string
	currentPosition  string
	scrollOnReappear bool
	anchorKey        string // source+account the restoration state belongs to

	hasUserInteracted bool
	refreshing        int // refreshes in flight; overlapping calls each hold one
	tracker           *VisiblePostTracker
}

// NewState creates an empty, idle state for source.
func NewState(source domain.ContentSource, session Session) *State {
	return &State{
		source:  source,
		session: session,
		index:   map[string]int{},
		tracker: NewVisiblePostTracker(),
	}
}

// Source returns the source this state belongs to.
func (s *State) Source() domain.ContentSource {
	return s.source
}

func (s *State) setSession(session Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

// LoadInitial fetches the source's current page. It coalesces: a call while
// a load is in flight returns immediately, as does a call once posts are
// loaded, unless force is set.
func (s *State) LoadInitial(ctx context.Context, force bool) {
	s.mu.Lock()
	if s.status == StatusLoading && !force {
		s.mu.Unlock()
		return
	}
	if s.status == StatusLoaded && !force && len(s.posts) > 0 {
		s.mu.Unlock()
		return
	}
	s.status = StatusLoading
	s.err = nil
	s.hasUserInteracted = false
	s.reqSeq++
	seq := s.reqSeq
	session := s.session
	source := s.source
	s.mu.Unlock()

	posts, fetchErr := session.Timeline.FetchSource(ctx, source)
	savedID := s.savedPosition(ctx, session, source)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.reqSeq {
		// A forced load started after this one; its result wins.
		return
	}
	s.dropStaleAnchor(session.AccountID)
	if fetchErr != nil {
		logging.Warn("timeline fetch failed", "source", source.Identifier(), "err", fetchErr)
		s.err = fetchErr
	} else {
		s.replacePosts(posts)
	}
	s.status = StatusLoaded
	s.determineInitialTarget(savedID)
}

// Refresh is a forced load that suppresses visibility-driven saves while
// the list is being replaced.
func (s *State) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.refreshing++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshing--
		s.mu.Unlock()
	}()
	s.LoadInitial(ctx, true)
}

func (s *State) savedPosition(ctx context.Context, session Session, source domain.ContentSource) string {
	if session.Positions == nil {
		return ""
	}
	id, ok, err := session.Positions.Position(ctx, source.Identifier(), session.AccountID)
	if err != nil {
		logging.Warn("position lookup failed", "source", source.Identifier(), "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

// dropStaleAnchor clears restoration state that was computed for a
// different (source, account) pair than the one now loading.
func (s *State) dropStaleAnchor(accountID string) {
	key := s.source.Identifier() + "\x00" + accountID
	if s.anchorKey != "" && s.anchorKey != key {
		s.restoring = false
		s.pendingRestoreID = ""
		s.scrollTargetID = ""
		s.currentPosition = ""
		s.scrollOnReappear = false
	}
	s.anchorKey = key
}

func (s *State) replacePosts(posts []domain.Post) {
	s.posts = make([]domain.Post, 0, len(posts))
	s.index = make(map[string]int, len(posts))
	for _, p := range posts {
		if _, dup := s.index[p.ID]; dup || p.ID == "" {
			continue
		}
		s.index[p.ID] = len(s.posts)
		s.posts = append(s.posts, p)
	}
}

// determineInitialTarget picks where the view should land after a load:
// a persisted anchor (cold restore), then the in-memory anchor, then the
// top of the feed.
func (s *State) determineInitialTarget(savedID string) {
	_, savedPresent := s.index[savedID]
	_, currentPresent := s.index[s.currentPosition]
	if _, ok := s.index[s.pendingRestoreID]; s.restoring && !ok {
		s.restoring = false
		s.pendingRestoreID = ""
	}

	switch {
	case savedID != "" && savedPresent:
		s.restoring = true
		s.pendingRestoreID = savedID
		s.currentPosition = savedID
		s.scrollTargetID = savedID
		logging.Debug("cold restore", "source", s.source.Identifier(), "post", savedID)
	case s.currentPosition != "" && currentPresent:
		s.scrollTargetID = s.currentPosition
	default:
		s.scrollTargetID = ""
		if len(s.posts) > 0 {
			s.scrollTargetID = s.posts[0].ID
		}
	}

	if s.scrollTargetID != "" {
		s.tracker.Reset(s.scrollTargetID)
	} else {
		s.tracker.Reset()
	}
}

// TargetForInitialDisplay returns the post the view should scroll to as it
// appears. A set scroll target is consumed by the call.
func (s *State) TargetForInitialDisplay() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id := s.scrollTargetID; id != "" {
		s.scrollTargetID = ""
		s.scrollOnReappear = false
		return id, true
	}
	if s.restoring && s.pendingRestoreID != "" {
		return s.pendingRestoreID, true
	}
	if s.scrollOnReappear && s.currentPosition != "" {
		s.scrollOnReappear = false
		return s.currentPosition, true
	}
	return "", false
}

// ClearScrollTarget drops an unconsumed scroll target.
func (s *State) ClearScrollTarget() {
	s.mu.Lock()
	s.scrollTargetID = ""
	s.mu.Unlock()
}

// PrepareForTemporaryRemoval marks the view as torn down while the state
// stays cached; the next display re-anchors to the current position.
func (s *State) PrepareForTemporaryRemoval() {
	s.mu.Lock()
	s.scrollOnReappear = true
	s.mu.Unlock()
}

// CompletePositionRestore finishes a cold restore once the view has
// scrolled to id. Calls for any other id are ignored.
func (s *State) CompletePositionRestore(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" || s.pendingRestoreID != id {
		return
	}
	s.restoring = false
	s.pendingRestoreID = ""
	s.currentPosition = id
}

// RetryRestoreIfNeeded re-arms the scroll target for a pending restore
// whose post is present.
func (s *State) RetryRestoreIfNeeded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.restoring || s.pendingRestoreID == "" {
		return
	}
	if _, ok := s.index[s.pendingRestoreID]; ok {
		s.scrollTargetID = s.pendingRestoreID
	}
}

// PostDidAppear records id as on screen and may save a new anchor.
func (s *State) PostDidAppear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Add(id)
	s.trySave()
}

// PostDidDisappear records id as off screen and may save a new anchor.
func (s *State) PostDidDisappear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Remove(id)
	s.trySave()
}

// UserDidInteract must be called on user-initiated scrolling only. Until
// it is, visibility changes never persist a position.
func (s *State) UserDidInteract() {
	s.mu.Lock()
	s.hasUserInteracted = true
	s.mu.Unlock()
}

// ResetInteractionState re-anchors visibility bookkeeping at id.
func (s *State) ResetInteractionState(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasUserInteracted = false
	s.tracker.Reset(id)
}

// QueueSave schedules a write of id without the visibility gating.
func (s *State) QueueSave(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		return
	}
	s.writePosition(id)
}

func (s *State) trySave() {
	if !s.hasUserInteracted || s.refreshing > 0 {
		return
	}
	top, ok := s.tracker.TopVisibleID(s.index)
	if !ok || top == s.currentPosition {
		return
	}
	s.currentPosition = top
	s.writePosition(top)
}

func (s *State) writePosition(id string) {
	if s.session.Positions == nil {
		return
	}
	s.session.Positions.DebouncedSet(s.source.Identifier(), s.session.AccountID, id)
}

// Posts returns a copy of the current post list.
func (s *State) Posts() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.posts)
}

func (s *State) Status() LoadingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *State) IsLoading() bool {
	return s.Status() == StatusLoading
}

// Err returns the last fetch error; nil after a successful load.
func (s *State) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *State) IsRestoringPosition() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoring
}

func (s *State) PendingRestoreID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingRestoreID, s.pendingRestoreID != ""
}

func (s *State) CurrentScrollPosition() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPosition, s.currentPosition != ""
}

// IndexOf returns the position of id in the current post order.
func (s *State) IndexOf(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	return i, ok
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Source:                s.source,
		Posts:                 slices.Clone(s.posts),
		Status:                s.status,
		Err:                   s.err,
		IsRestoringPosition:   s.restoring,
		PendingRestoreID:      s.pendingRestoreID,
		CurrentScrollPosition: s.currentPosition,
	}
}
