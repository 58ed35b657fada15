package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/CrestNiraj12/terminalfeed/infra/logging"
	"github.com/CrestNiraj12/terminalfeed/infra/position"
)

// Position backends.
const (
	BackendSQLite = "sqlite"
	BackendValkey = "valkey"
)

// Config holds application-level configuration.
type Config struct {
	InstanceURL string // e.g. "https://mastodon.social"
	TokenPath   string // Path to file containing the access token
	SourcesPath string // Pinned sources (TOML)
	UIStatePath string // Last active source (JSON)
	LogPath     string
	LogLevel    log.Level

	PositionBackend string // BackendSQLite or BackendValkey
	DBPath          string
	ValkeyAddress   string
	ValkeyTLS       bool
	SaveDebounce    time.Duration
}

// Load reads configuration from environment variables.
//
//	TERMINALFEED_INSTANCE          Mastodon instance URL (default https://mastodon.social)
//	TERMINALFEED_TOKEN             Path to token file (default ~/.config/terminalfeed/token)
//	TERMINALFEED_SOURCES           Pinned sources file
//	TERMINALFEED_STATE             UI state file
//	TERMINALFEED_POSITION_BACKEND  "sqlite" (default) or "valkey"
//	TERMINALFEED_DB                SQLite database path
//	TERMINALFEED_VALKEY_ADDRESS    host:port (default 127.0.0.1:6379)
//	TERMINALFEED_VALKEY_TLS        "true" to connect over TLS
//	TERMINALFEED_SAVE_DEBOUNCE     Position save window, e.g. "750ms" (default 1s)
//	TERMINALFEED_LOG               Log file path
//	TERMINALFEED_LOG_LEVEL         debug, info (default), warn or error
func Load() (Config, error) {
	instance := os.Getenv("TERMINALFEED_INSTANCE")
	if instance == "" {
		instance = "https://mastodon.social"
	}
	parsed, err := url.Parse(instance)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, fmt.Errorf("invalid TERMINALFEED_INSTANCE: must be an absolute URL")
	}
	if parsed.Scheme != "https" {
		return Config{}, fmt.Errorf("invalid TERMINALFEED_INSTANCE: only https is allowed")
	}
	instance = strings.TrimRight(parsed.String(), "/")

	configDir, err := configHome()
	if err != nil {
		return Config{}, err
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("TERMINALFEED_POSITION_BACKEND")))
	switch backend {
	case "":
		backend = BackendSQLite
	case BackendSQLite, BackendValkey:
	default:
		return Config{}, fmt.Errorf("invalid TERMINALFEED_POSITION_BACKEND %q: want sqlite or valkey", backend)
	}

	debounce := position.DefaultDebounce
	if v := strings.TrimSpace(os.Getenv("TERMINALFEED_SAVE_DEBOUNCE")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid TERMINALFEED_SAVE_DEBOUNCE %q: must be a positive duration", v)
		}
		debounce = d
	}

	valkeyTLS := false
	if v := strings.TrimSpace(os.Getenv("TERMINALFEED_VALKEY_TLS")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TERMINALFEED_VALKEY_TLS %q: %w", v, err)
		}
		valkeyTLS = b
	}

	level := log.InfoLevel
	if v := strings.TrimSpace(os.Getenv("TERMINALFEED_LOG_LEVEL")); v != "" {
		l, err := log.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TERMINALFEED_LOG_LEVEL %q: %w", v, err)
		}
		level = l
	}

	return Config{
		InstanceURL:     instance,
		TokenPath:       envOr("TERMINALFEED_TOKEN", filepath.Join(configDir, "token")),
		SourcesPath:     envOr("TERMINALFEED_SOURCES", filepath.Join(configDir, "sources.toml")),
		UIStatePath:     envOr("TERMINALFEED_STATE", filepath.Join(configDir, "ui_state.json")),
		LogPath:         envOr("TERMINALFEED_LOG", logging.DefaultPath()),
		LogLevel:        level,
		PositionBackend: backend,
		DBPath:          envOr("TERMINALFEED_DB", position.DefaultSQLitePath()),
		ValkeyAddress:   envOr("TERMINALFEED_VALKEY_ADDRESS", "127.0.0.1:6379"),
		ValkeyTLS:       valkeyTLS,
		SaveDebounce:    debounce,
	}, nil
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func configHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "terminalfeed"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "terminalfeed"), nil
}
