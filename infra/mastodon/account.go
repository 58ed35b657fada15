package mastodon

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// accountService implements app.AccountService using the Mastodon API.
type accountService struct {
	client *Client
}

// NewAccountService creates an AccountService backed by Mastodon.
func NewAccountService(client *Client) *accountService {
	return &accountService{client: client}
}

// CurrentAccountID asks the server who the token belongs to. It never
// caches, so a swapped token is noticed on the next call.
func (s *accountService) CurrentAccountID(ctx context.Context) (string, error) {
	data, err := s.client.Get(ctx, "/api/v1/accounts/verify_credentials")
	if err != nil {
		return "", fmt.Errorf("fetching account: %w", err)
	}

	var acct mastodonAccount
	if err := json.Unmarshal(data, &acct); err != nil {
		return "", fmt.Errorf("parsing account: %w", err)
	}
	id := strings.TrimSpace(sanitizeForTerminal(acct.ID))
	if id == "" {
		return "", fmt.Errorf("parsing account: empty id")
	}
	return id, nil
}
