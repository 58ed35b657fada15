package domain

import "time"

// Post is a single timeline entry. Only ID matters for position tracking;
// the rest is display data.
type Post struct {
	ID        string
	AccountID string
	Author    string
	Username  string
	Content   string // Plain text, HTML stripped
	CreatedAt time.Time
	URL       string
	BoostedBy string // Set when the entry is a reblog
}
