package position

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestValkeyKey(t *testing.T) {
	if got := valkeyKey("list:42", "me"); got != "position:me:list:42" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestValkey_RoundTrip(t *testing.T) {
	addr := os.Getenv("TERMINALFEED_VALKEY_ADDRESS")
	if addr == "" {
		t.Skip("TERMINALFEED_VALKEY_ADDRESS not set")
	}
	v, err := OpenValkey(addr, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer v.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	account := fmt.Sprintf("test-%d", time.Now().UnixNano())

	if _, ok, err := v.Position(ctx, "home", account); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := v.SetPosition(ctx, "home", account, "123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := v.Position(ctx, "home", account)
	if err != nil || !ok || got != "123" {
		t.Fatalf("expected 123, got %q ok=%v err=%v", got, ok, err)
	}
}
