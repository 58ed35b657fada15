package mastodon

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"github.com/CrestNiraj12/terminalfeed/domain"
)

const pageLimit = 20

// timelineService implements app.TimelineService using the Mastodon API.
type timelineService struct {
	client *Client
}

// NewTimelineService creates a TimelineService backed by Mastodon.
func NewTimelineService(client *Client) *timelineService {
	return &timelineService{client: client}
}

// mastodonStatus is the subset of Mastodon's Status entity we care about.
type mastodonStatus struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"` // HTML
	CreatedAt string          `json:"created_at"`
	URL       string          `json:"url"`
	Account   mastodonAccount `json:"account"`
	Reblog    *mastodonStatus `json:"reblog"`
}

type mastodonAccount struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Acct        string `json:"acct"`
}

func (s *timelineService) FetchSource(ctx context.Context, source domain.ContentSource) ([]domain.Post, error) {
	path, err := sourcePath(source)
	if err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Identifier(), err)
	}

	var statuses []mastodonStatus
	if err := json.Unmarshal(data, &statuses); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source.Identifier(), err)
	}
	return mapStatuses(statuses), nil
}

// sourcePath resolves a source to its API endpoint, including the query.
func sourcePath(source domain.ContentSource) (string, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(pageLimit))

	var path string
	switch source.Kind {
	case domain.SourceHome:
		path = "/api/v1/timelines/home"
	case domain.SourceList:
		if source.ListID == "" {
			return "", fmt.Errorf("list source: %w", domain.ErrEmptyIdentifier)
		}
		path = "/api/v1/timelines/list/" + url.PathEscape(source.ListID)
	case domain.SourceFeed, domain.SourceFeedByURI:
		p, err := feedPath(source.FeedURI, q)
		if err != nil {
			return "", err
		}
		path = p
	case domain.SourceTrendingFeed:
		tag, err := trendingTag(source.Link)
		if err != nil {
			return "", err
		}
		path = "/api/v1/timelines/tag/" + url.PathEscape(tag)
	case domain.SourceTrendingPosts:
		path = "/api/v1/trends/statuses"
	default:
		return "", fmt.Errorf("source kind %s: %w", source.Kind, domain.ErrUnknownSource)
	}
	return path + "?" + q.Encode(), nil
}

// trendingTag extracts the hashtag from a trending link such as
// https://host/tags/name. A bare "name" or "#name" is accepted as well.
func trendingTag(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("trending feed: %w", domain.ErrEmptyIdentifier)
	}
	if !strings.Contains(link, "://") {
		tag := strings.TrimPrefix(link, "#")
		if tag == "" || strings.ContainsAny(tag, "/?#") {
			return "", fmt.Errorf("trending feed %q: %w", link, domain.ErrUnknownSource)
		}
		return tag, nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("trending feed %q: %w", link, domain.ErrUnknownSource)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "tags" && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("trending feed %q: %w", link, domain.ErrUnknownSource)
}

func feedPath(uri string, q url.Values) (string, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return "", fmt.Errorf("feed: %w", domain.ErrEmptyIdentifier)
	case strings.HasPrefix(uri, "tag:"), strings.HasPrefix(uri, "#"):
		tag := strings.TrimPrefix(strings.TrimPrefix(uri, "tag:"), "#")
		if tag == "" {
			return "", fmt.Errorf("feed %q: %w", uri, domain.ErrEmptyIdentifier)
		}
		return "/api/v1/timelines/tag/" + url.PathEscape(tag), nil
	case uri == "public":
		return "/api/v1/timelines/public", nil
	case uri == "local":
		q.Set("local", "true")
		return "/api/v1/timelines/public", nil
	case strings.HasPrefix(uri, "https://"):
		q.Set("url", uri)
		return "/api/v1/timelines/link", nil
	default:
		return "", fmt.Errorf("feed %q: %w", uri, domain.ErrUnknownSource)
	}
}

// mapStatuses keeps server order. Boosts show the original post but keep
// the wrapper's id, which is what is unique within a timeline.
func mapStatuses(statuses []mastodonStatus) []domain.Post {
	posts := make([]domain.Post, 0, len(statuses))
	for _, st := range statuses {
		shown := st
		boostedBy := ""
		if st.Reblog != nil {
			shown = *st.Reblog
			boostedBy = displayName(st.Account)
		}

		createdAt, _ := time.Parse(time.RFC3339, shown.CreatedAt)
		posts = append(posts, domain.Post{
			ID:        sanitizeForTerminal(st.ID),
			AccountID: sanitizeForTerminal(shown.Account.ID),
			Author:    displayName(shown.Account),
			Username:  sanitizeForTerminal(shown.Account.Acct),
			Content:   stripHTML(shown.Content),
			CreatedAt: createdAt,
			URL:       sanitizeForTerminal(shown.URL),
			BoostedBy: boostedBy,
		})
	}
	return posts
}

func displayName(a mastodonAccount) string {
	if name := strings.TrimSpace(sanitizeForTerminal(a.DisplayName)); name != "" {
		return name
	}
	return sanitizeForTerminal(a.Acct)
}

// stripHTML removes HTML tags and decodes entities.
// Good enough for terminal display; not a security boundary.
var (
	htmlTagRe   = regexp.MustCompile(`<[^>]*>`)
	lineBreakRe = regexp.MustCompile(`(?i)</p>|<br\s*/?>`)
	scriptRe    = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
)

func stripHTML(s string) string {
	s = scriptRe.ReplaceAllString(s, "")
	// Replace paragraph ends and breaks with newlines
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(sanitizeForTerminal(s))
}

// sanitizeForTerminal drops escape sequences and control characters other
// than newline and tab, so remote text cannot drive the terminal.
func sanitizeForTerminal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
