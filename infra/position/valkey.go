package position

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
	"github.com/vmihailenco/msgpack/v5"
)

// ValkeyTTL bounds how long an untouched anchor is kept.
const ValkeyTTL = 30 * 24 * time.Hour

type valkeyRecord struct {
	PostID  string `msgpack:"p"`
	SavedAt int64  `msgpack:"t"`
}

// Valkey stores anchors in a Valkey (or Redis) server so several machines
// can share reading positions.
type Valkey struct {
	client valkey.Client
}

// OpenValkey connects to address, optionally over TLS.
func OpenValkey(address string, useTLS bool) (*Valkey, error) {
	var tlsConfig *tls.Config
	if useTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		TLSConfig:   tlsConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("creating valkey client: %w", err)
	}
	return &Valkey{client: client}, nil
}

func valkeyKey(sourceID, accountID string) string {
	return fmt.Sprintf("position:%s:%s", accountID, sourceID)
}

func (v *Valkey) Position(ctx context.Context, sourceID, accountID string) (string, bool, error) {
	cmd := v.client.B().Get().Key(valkeyKey(sourceID, accountID)).Build()
	resp := v.client.Do(ctx, cmd)
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading position: %w", err)
	}

	data, err := resp.AsBytes()
	if err != nil {
		return "", false, fmt.Errorf("converting position response: %w", err)
	}
	var rec valkeyRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return "", false, fmt.Errorf("decoding position: %w", err)
	}
	if rec.PostID == "" {
		return "", false, nil
	}
	return rec.PostID, true, nil
}

func (v *Valkey) SetPosition(ctx context.Context, sourceID, accountID, postID string) error {
	data, err := msgpack.Marshal(valkeyRecord{PostID: postID, SavedAt: time.Now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("encoding position: %w", err)
	}
	cmd := v.client.B().Set().Key(valkeyKey(sourceID, accountID)).Value(string(data)).Ex(ValkeyTTL).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("writing position: %w", err)
	}
	return nil
}

func (v *Valkey) Close() error {
	v.client.Close()
	return nil
}
