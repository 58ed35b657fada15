package timeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CrestNiraj12/terminalfeed/domain"
)

// stubTimeline returns a fixed page per call. When gate is non-nil every
// fetch blocks until it is closed; gates blocks only the n-th call (1-based).
type stubTimeline struct {
	mu    sync.Mutex
	pages [][]domain.Post
	err   error
	gate  chan struct{}
	gates map[int]chan struct{}
	calls atomic.Int32
}

func (s *stubTimeline) FetchSource(ctx context.Context, _ domain.ContentSource) ([]domain.Post, error) {
	n := int(s.calls.Add(1))
	if g, ok := s.gates[n]; ok {
		select {
		case <-g:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.pages) == 0 {
		return nil, nil
	}
	if n > len(s.pages) {
		n = len(s.pages)
	}
	return s.pages[n-1], nil
}

func (s *stubTimeline) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

type savedWrite struct {
	sourceID, accountID, postID string
}

// recordingPositions is an app.PositionStore that writes immediately.
type recordingPositions struct {
	mu     sync.Mutex
	saved  map[string]string
	writes []savedWrite
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
	r.writes = append(r.writes, savedWrite{sourceID, accountID, postID})
}

func (r *recordingPositions) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func posts(ids ...string) []domain.Post {
	out := make([]domain.Post, len(ids))
	now := time.Now()
	for i, id := range ids {
		out[i] = domain.Post{
			ID:        id,
			AccountID: "acct-" + id,
			Author:    "Author " + id,
			Content:   "hello " + id,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

func postIDs(in []domain.Post) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = p.ID
	}
	return out
}
