package app

import "context"

// PositionStore persists one anchor post per (source, account).
type PositionStore interface {
	// Position returns the saved anchor, if any.
	Position(ctx context.Context, sourceID, accountID string) (postID string, ok bool, err error)

	// DebouncedSet schedules a write. Calls for the same key inside the
	// debounce window collapse into one write of the latest value.
	DebouncedSet(sourceID, accountID, postID string)
}
