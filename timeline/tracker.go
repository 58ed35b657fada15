package timeline

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// VisiblePostTracker holds the ids currently on screen. It stores no
// ordering; the anchor is derived from the caller's post order each time.
type VisiblePostTracker struct {
	visible mapset.Set[string]
}

func NewVisiblePostTracker() *VisiblePostTracker {
	return &VisiblePostTracker{visible: mapset.NewThreadUnsafeSet[string]()}
}

func (t *VisiblePostTracker) Add(id string) {
	if id != "" {
		t.visible.Add(id)
	}
}

func (t *VisiblePostTracker) Remove(id string) {
	t.visible.Remove(id)
}

// Reset replaces the visible set with exactly ids.
func (t *VisiblePostTracker) Reset(ids ...string) {
	t.visible.Clear()
	for _, id := range ids {
		t.Add(id)
	}
}

func (t *VisiblePostTracker) Contains(id string) bool {
	return t.visible.Contains(id)
}

func (t *VisiblePostTracker) Len() int {
	return t.visible.Cardinality()
}

// TopVisibleID returns the visible id with the lowest index in order.
// Ids missing from order are ignored.
func (t *VisiblePostTracker) TopVisibleID(order map[string]int) (string, bool) {
	top, best := "", -1
	t.visible.Each(func(id string) bool {
		idx, ok := order[id]
		if ok && (best < 0 || idx < best) {
			top, best = id, idx
		}
		return false
	})
	return top, best >= 0
}
