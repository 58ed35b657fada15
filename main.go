package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/terminalfeed/domain"
	"github.com/CrestNiraj12/terminalfeed/infra/auth"
	"github.com/CrestNiraj12/terminalfeed/infra/config"
	"github.com/CrestNiraj12/terminalfeed/infra/logging"
	"github.com/CrestNiraj12/terminalfeed/infra/mastodon"
	"github.com/CrestNiraj12/terminalfeed/infra/position"
	"github.com/CrestNiraj12/terminalfeed/timeline"
	"github.com/CrestNiraj12/terminalfeed/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliMode int

const (
	cliRun cliMode = iota
	cliVersion
	cliHelp
	cliInvalid
)

func parseCLIArgs(args []string) (cliMode, string) {
	if len(args) == 0 {
		return cliRun, ""
	}

	switch args[0] {
	case "--version", "-version", "-v":
		return cliVersion, ""
	case "--help", "-h", "help":
		return cliHelp, ""
	default:
		return cliInvalid, fmt.Sprintf("unexpected argument: %s", strings.Join(args, " "))
	}
}

func usage() string {
	return "Usage: terminalfeed [--version|-version|-v] [--help|-h]"
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

func openBackend(cfg config.Config) (position.Backend, error) {
	switch cfg.PositionBackend {
	case config.BackendValkey:
		return position.OpenValkey(cfg.ValkeyAddress, cfg.ValkeyTLS)
	case config.BackendSQLite, "":
		return position.OpenSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown position backend %q", cfg.PositionBackend)
	}
}

func main() {
	mode, msg := parseCLIArgs(os.Args[1:])
	switch mode {
	case cliVersion:
		v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
		fmt.Printf("TerminalFeed %s\ncommit: %s\nbuilt: %s\n", v, c, d)
		return
	case cliHelp:
		fmt.Println(usage())
		return
	case cliInvalid:
		fmt.Fprintf(os.Stderr, "%s\n%s\n", msg, usage())
		os.Exit(2)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "terminalfeed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config from environment.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := logging.Init(cfg.LogPath, cfg.LogLevel); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer logging.Close()
	logging.Info("starting", "instance", cfg.InstanceURL, "backend", cfg.PositionBackend)

	// 2. Build infrastructure.
	httpClient := mastodon.NewClient(cfg.InstanceURL, auth.Resolve(cfg.TokenPath))
	accountSvc := mastodon.NewAccountService(httpClient)
	timelineSvc := mastodon.NewTimelineService(httpClient)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	accountID, err := accountSvc.CurrentAccountID(ctx)
	cancel()
	if errors.Is(err, domain.ErrUnauthorized) {
		return fmt.Errorf("access token rejected by %s", cfg.InstanceURL)
	}
	if err != nil {
		// Offline start: feeds will show their own errors.
		logging.Warn("account lookup failed", "err", err)
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("position store: %w", err)
	}
	store := position.NewStore(backend, cfg.SaveDebounce)
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("closing position store", "err", err)
		}
	}()

	sources, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		return fmt.Errorf("sources: %w", err)
	}
	uiState, err := config.LoadUIState(cfg.UIStatePath)
	if err != nil {
		logging.Warn("ui state unreadable", "err", err)
	}

	// 3. Wire root TUI model.
	rootModel := tui.NewApp(tui.Deps{
		Account: accountSvc,
		Cache:   timeline.NewCache(),
		Session: timeline.Session{
			Timeline:  timelineSvc,
			Positions: store,
			AccountID: accountID,
		},
		Sources:     sources,
		LastSource:  uiState.LastSource,
		SourcesPath: cfg.SourcesPath,
		StatePath:   cfg.UIStatePath,
	})

	// 4. Run.
	p := tea.NewProgram(rootModel, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
