package timeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/CrestNiraj12/terminalfeed/domain"
	"github.com/CrestNiraj12/terminalfeed/infra/logging"
)

const maxConcurrentWarmUps = 4

// Cache maps sources to their State. Repeated lookups of an equal source
// return the same *State, which is what lets a feed survive its view being
// torn down and rebuilt.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*State
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*State)}
}

// ViewModel returns the cached state for source, creating it on first use.
// An existing entry only has its session refreshed.
func (c *Cache) ViewModel(source domain.ContentSource, session Session) *State {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := source.Identifier()
	if st, ok := c.entries[key]; ok {
		st.setSession(session)
		return st
	}
	st := NewState(source, session)
	c.entries[key] = st
	return st
}

// Lookup returns the cached state without creating one.
func (c *Cache) Lookup(source domain.ContentSource) (*State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.entries[source.Identifier()]
	return st, ok
}

// PruneSources drops every entry whose source is not in retain. In-flight
// loads of pruned states finish against the orphaned instance.
func (c *Cache) PruneSources(retain ...domain.ContentSource) {
	keep := mapset.NewThreadUnsafeSet[string]()
	for _, src := range retain {
		keep.Add(src.Identifier())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	pruned := 0
	for key := range c.entries {
		if !keep.Contains(key) {
			delete(c.entries, key)
			pruned++
		}
	}
	if pruned > 0 {
		logging.Debug("pruned timeline states", "count", pruned, "kept", len(c.entries))
	}
}

// RemoveAll drops every entry, e.g. when the signed-in account changes.
func (c *Cache) RemoveAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// WarmUp loads the given sources in parallel. Sources that are already
// loaded are skipped by LoadInitial itself. The returned error joins the
// per-source fetch errors; one failing source never stops the others.
func (c *Cache) WarmUp(ctx context.Context, session Session, sources ...domain.ContentSource) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(maxConcurrentWarmUps)

	for _, src := range sources {
		st := c.ViewModel(src, session)
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			st.LoadInitial(ctx, false)
			if err := st.Err(); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", src.Identifier(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
