package position

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/CrestNiraj12/terminalfeed/infra/logging"
)

// DefaultDebounce is the window in which repeated saves for one key
// collapse into a single write.
const DefaultDebounce = time.Second

// Backend persists anchors. Implementations must accept concurrent writes
// for different keys.
type Backend interface {
	Position(ctx context.Context, sourceID, accountID string) (postID string, ok bool, err error)
	SetPosition(ctx context.Context, sourceID, accountID, postID string) error
	Close() error
}

type key struct {
	sourceID  string
	accountID string
}

type pendingWrite struct {
	postID string
	seq    uint64
	timer  *time.Timer
}

// Store debounces writes per (source, account) in front of a Backend.
// Writes for one key are serialised and a value stays visible to Position
// until its write has finished.
type Store struct {
	backend Backend
	window  time.Duration

	mu      sync.Mutex
	seq     uint64
	pending map[key]*pendingWrite
	writing map[key]*sync.Mutex
	closed  bool
}

// NewStore wraps backend. A non-positive window falls back to DefaultDebounce.
func NewStore(backend Backend, window time.Duration) *Store {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Store{
		backend: backend,
		window:  window,
		pending: make(map[key]*pendingWrite),
		writing: make(map[key]*sync.Mutex),
	}
}

// Position returns a not-yet-written value before asking the backend.
func (s *Store) Position(ctx context.Context, sourceID, accountID string) (string, bool, error) {
	s.mu.Lock()
	if p, ok := s.pending[key{sourceID, accountID}]; ok {
		s.mu.Unlock()
		return p.postID, true, nil
	}
	s.mu.Unlock()
	return s.backend.Position(ctx, sourceID, accountID)
}

// DebouncedSet restarts the key's timer with postID as the value to write.
func (s *Store) DebouncedSet(sourceID, accountID, postID string) {
	k := key{sourceID, accountID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if p, ok := s.pending[k]; ok {
		p.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.pending[k] = &pendingWrite{
		postID: postID,
		seq:    seq,
		timer:  time.AfterFunc(s.window, func() { s.fire(k, seq) }),
	}
}

func (s *Store) fire(k key, seq uint64) {
	_ = s.writePending(context.Background(), k, seq)
}

// writePending writes the key's pending value. A non-zero seq restricts the
// write to that exact DebouncedSet; a superseded or already written value is
// skipped.
func (s *Store) writePending(ctx context.Context, k key, seq uint64) error {
	s.mu.Lock()
	wl, ok := s.writing[k]
	if !ok {
		wl = &sync.Mutex{}
		s.writing[k] = wl
	}
	s.mu.Unlock()

	wl.Lock()
	defer wl.Unlock()

	s.mu.Lock()
	p, ok := s.pending[k]
	if !ok || (seq != 0 && p.seq != seq) {
		s.mu.Unlock()
		return nil
	}
	p.timer.Stop()
	s.mu.Unlock()

	err := s.write(ctx, k, p.postID)

	s.mu.Lock()
	if s.pending[k] == p {
		delete(s.pending, k)
	}
	s.mu.Unlock()
	return err
}

func (s *Store) write(ctx context.Context, k key, postID string) error {
	err := s.backend.SetPosition(ctx, k.sourceID, k.accountID, postID)
	if err != nil {
		logging.Warn("position write failed", "source", k.sourceID, "account", k.accountID, "err", err)
	}
	return err
}

// Flush writes every pending value now and waits for writes already in
// progress.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	keys := make([]key, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	var errs []error
	for _, k := range keys {
		if err := s.writePending(ctx, k, 0); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes pending writes and closes the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	flushErr := s.Flush(context.Background())
	return errors.Join(flushErr, s.backend.Close())
}
