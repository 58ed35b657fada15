package domain

import (
	"fmt"
	"strings"
)

// SourceKind tags the ContentSource variant.
type SourceKind int

const (
	SourceHome SourceKind = iota
	SourceList
	SourceFeed
	SourceFeedByURI
	SourceTrendingFeed
	SourceTrendingPosts
)

var kindNames = map[SourceKind]string{
	SourceHome:          "home",
	SourceList:          "list",
	SourceFeed:          "feed",
	SourceFeedByURI:     "feed-uri",
	SourceTrendingFeed:  "trending-feed",
	SourceTrendingPosts: "trending-posts",
}

func (k SourceKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseSourceKind maps a persisted kind name back to its SourceKind.
func ParseSourceKind(v string) (SourceKind, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for k, name := range kindNames {
		if name == v {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSource, v)
}

// ContentSource identifies one independently scrollable feed. It is a plain
// value: two sources built from the same kind and data share an Identifier,
// which is what caches and persisted positions are keyed by.
type ContentSource struct {
	Kind    SourceKind
	ListID  string // SourceList
	FeedURI string // SourceFeed, SourceFeedByURI
	Link    string // SourceTrendingFeed; the tag is read from its /tags/<name> path
	Label   string // Display name; not part of the identity
}

func Home() ContentSource { return ContentSource{Kind: SourceHome} }

func List(id, label string) ContentSource {
	return ContentSource{Kind: SourceList, ListID: strings.TrimSpace(id), Label: label}
}

func Feed(uri, label string) ContentSource {
	return ContentSource{Kind: SourceFeed, FeedURI: strings.TrimSpace(uri), Label: label}
}

func FeedByURI(uri string) ContentSource {
	return ContentSource{Kind: SourceFeedByURI, FeedURI: strings.TrimSpace(uri)}
}

func TrendingFeed(link, label string) ContentSource {
	return ContentSource{Kind: SourceTrendingFeed, Link: strings.TrimSpace(link), Label: label}
}

func TrendingPosts() ContentSource { return ContentSource{Kind: SourceTrendingPosts} }

// Identifier returns the stable cache and persistence key for the source.
// The kind prefix keeps variants sharing a payload from colliding.
func (s ContentSource) Identifier() string {
	switch s.Kind {
	case SourceHome, SourceTrendingPosts:
		return s.Kind.String()
	case SourceList:
		return s.Kind.String() + ":" + s.ListID
	case SourceFeed, SourceFeedByURI:
		return s.Kind.String() + ":" + s.FeedURI
	case SourceTrendingFeed:
		return s.Kind.String() + ":" + s.Link
	default:
		return s.Kind.String()
	}
}

// Validate reports whether the variant carries the data its identity needs.
func (s ContentSource) Validate() error {
	var payload string
	switch s.Kind {
	case SourceHome, SourceTrendingPosts:
		return nil
	case SourceList:
		payload = s.ListID
	case SourceFeed, SourceFeedByURI:
		payload = s.FeedURI
	case SourceTrendingFeed:
		payload = s.Link
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSource, s.Kind)
	}
	if payload == "" {
		return fmt.Errorf("%w: %s", ErrEmptyIdentifier, s.Kind)
	}
	return nil
}

// DisplayName is the tab label for the source.
func (s ContentSource) DisplayName() string {
	if l := strings.TrimSpace(s.Label); l != "" {
		return l
	}
	switch s.Kind {
	case SourceHome:
		return "home"
	case SourceTrendingPosts:
		return "trending"
	case SourceList:
		return "list " + s.ListID
	case SourceFeed, SourceFeedByURI:
		return s.FeedURI
	case SourceTrendingFeed:
		return s.Link
	}
	return s.Identifier()
}

// Equal compares sources by identity.
func (s ContentSource) Equal(o ContentSource) bool {
	return s.Identifier() == o.Identifier()
}
