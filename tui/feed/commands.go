package feed

import (
	"context"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/terminalfeed/infra/logging"
)

// pollInterval is how often a source that another caller is still loading
// is checked again.
const pollInterval = 150 * time.Millisecond

func (m Model) loadActive(refresh bool) tea.Cmd {
	st, ok := m.activeState()
	if !ok {
		return nil
	}
	id := st.Source().Identifier()
	return func() tea.Msg {
		if refresh {
			st.Refresh(context.Background())
		} else {
			st.LoadInitial(context.Background(), false)
		}
		return LoadedMsg{SourceID: id}
	}
}

func pollLoaded(id string) tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return LoadedMsg{SourceID: id}
	})
}

// startCommand launches name without waiting for it to exit.
var startCommand = func(name string, arg ...string) error {
	return exec.Command(name, arg...).Start()
}

func openURL(rawURL string) tea.Cmd {
	if !isSafeExternalURL(rawURL) {
		return nil
	}
	return func() tea.Msg {
		opener := "xdg-open"
		if runtime.GOOS == "darwin" {
			opener = "open"
		}
		if err := startCommand(opener, rawURL); err != nil {
			logging.Warn("opening url failed", "opener", opener, "url", rawURL, "err", err)
		}
		return nil
	}
}

func isSafeExternalURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
