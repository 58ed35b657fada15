package app

import (
	"context"

	"github.com/CrestNiraj12/terminalfeed/domain"
)

// TimelineService fetches posts from a social timeline.
type TimelineService interface {
	// FetchSource returns the current page of a source in feed order.
	// An empty result is a valid, empty feed; errors are transport or
	// parse failures only.
	FetchSource(ctx context.Context, source domain.ContentSource) ([]domain.Post, error)
}
