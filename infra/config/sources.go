package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/CrestNiraj12/terminalfeed/domain"
)

type sourceEntry struct {
	Kind  string `toml:"kind"`
	ID    string `toml:"id,omitempty"`
	URI   string `toml:"uri,omitempty"`
	Link  string `toml:"link,omitempty"`
	Label string `toml:"label,omitempty"`
}

type sourcesFile struct {
	Sources []sourceEntry `toml:"sources"`
}

// DefaultSources is what a fresh install pins.
func DefaultSources() []domain.ContentSource {
	return []domain.ContentSource{domain.Home(), domain.TrendingPosts()}
}

// LoadSources reads the pinned sources. A missing file yields
// DefaultSources. Duplicate identifiers keep their first occurrence.
func LoadSources(path string) ([]domain.ContentSource, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSources(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}

	var file sourcesFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return nil, fmt.Errorf("decoding sources at %s: %w", path, err)
	}

	out := make([]domain.ContentSource, 0, len(file.Sources))
	seen := make(map[string]struct{}, len(file.Sources))
	for i, e := range file.Sources {
		src, err := e.toSource()
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i+1, err)
		}
		if _, dup := seen[src.Identifier()]; dup {
			continue
		}
		seen[src.Identifier()] = struct{}{}
		out = append(out, src)
	}
	return out, nil
}

// SaveSources writes the pinned sources in order.
func SaveSources(path string, sources []domain.ContentSource) error {
	file := sourcesFile{Sources: make([]sourceEntry, 0, len(sources))}
	for _, src := range sources {
		file.Sources = append(file.Sources, entryFor(src))
	}

	blob, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating sources directory: %w", err)
	}
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return fmt.Errorf("writing sources: %w", err)
	}
	return nil
}

func (e sourceEntry) toSource() (domain.ContentSource, error) {
	kind, err := domain.ParseSourceKind(e.Kind)
	if err != nil {
		return domain.ContentSource{}, err
	}

	var src domain.ContentSource
	switch kind {
	case domain.SourceHome:
		src = domain.Home()
	case domain.SourceList:
		src = domain.List(e.ID, e.Label)
	case domain.SourceFeed:
		src = domain.Feed(e.URI, e.Label)
	case domain.SourceFeedByURI:
		src = domain.FeedByURI(e.URI)
	case domain.SourceTrendingFeed:
		src = domain.TrendingFeed(e.Link, e.Label)
	case domain.SourceTrendingPosts:
		src = domain.TrendingPosts()
	}
	if err := src.Validate(); err != nil {
		return domain.ContentSource{}, err
	}
	return src, nil
}

func entryFor(src domain.ContentSource) sourceEntry {
	return sourceEntry{
		Kind:  src.Kind.String(),
		ID:    src.ListID,
		URI:   src.FeedURI,
		Link:  src.Link,
		Label: src.Label,
	}
}
