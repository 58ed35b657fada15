package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/terminalfeed/app"
	"github.com/CrestNiraj12/terminalfeed/domain"
	"github.com/CrestNiraj12/terminalfeed/infra/config"
	"github.com/CrestNiraj12/terminalfeed/infra/logging"
	"github.com/CrestNiraj12/terminalfeed/timeline"
	"github.com/CrestNiraj12/terminalfeed/tui/common"
	"github.com/CrestNiraj12/terminalfeed/tui/feed"
)

const warmUpTimeout = 30 * time.Second

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Account     app.AccountService
	Cache       *timeline.Cache
	Session     timeline.Session
	Sources     []domain.ContentSource
	LastSource  string // identifier of the tab to open on
	SourcesPath string
	StatePath   string
}

// App is the root Bubble Tea model. It owns account-level concerns and
// persistence of UI preferences; everything else goes to the feed.
type App struct {
	deps      Deps
	feed      feed.Model
	keys      common.KeyMap
	status    string // Transient status message
	verifying bool
}

type accountVerifiedMsg struct {
	ID  string
	Err error
}

type warmedUpMsg struct {
	Err error
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	return App{
		deps: deps,
		feed: feed.New(deps.Cache, deps.Session, deps.Sources, deps.LastSource),
		keys: common.DefaultKeyMap(),
	}
}

// Init loads the active tab and warms the others in the background.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.feed.Init(),
		a.warmUp(),
	)
}

func (a App) warmUp() tea.Cmd {
	active, ok := a.feed.ActiveSource()
	if !ok {
		return nil
	}
	var others []domain.ContentSource
	for _, src := range a.feed.Sources() {
		if !src.Equal(active) {
			others = append(others, src)
		}
	}
	if len(others) == 0 {
		return nil
	}
	cache, session := a.deps.Cache, a.feed.Session()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), warmUpTimeout)
		defer cancel()
		return warmedUpMsg{Err: cache.WarmUp(ctx, session, others...)}
	}
}

func (a App) verifyAccount() tea.Cmd {
	account := a.deps.Account
	return func() tea.Msg {
		id, err := account.CurrentAccountID(context.Background())
		return accountVerifiedMsg{ID: id, Err: err}
	}
}

// Update handles messages and routes the rest to the feed.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		if key.Matches(msg, a.keys.Reverify) {
			if a.verifying || a.deps.Account == nil {
				return a, nil
			}
			a.verifying = true
			a.status = "Checking account..."
			return a, a.verifyAccount()
		}
		a.status = ""

	case accountVerifiedMsg:
		a.verifying = false
		if msg.Err != nil {
			logging.Warn("account check failed", "err", msg.Err)
			a.status = "Account check failed: " + msg.Err.Error()
			return a, nil
		}
		session := a.feed.Session()
		if msg.ID == session.AccountID {
			a.status = "Account unchanged."
			return a, nil
		}
		logging.Info("account changed", "from", session.AccountID, "to", msg.ID)
		a.deps.Cache.RemoveAll()
		session.AccountID = msg.ID
		a.status = "Account changed; feeds reloaded."
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(feed.SessionChangedMsg{Session: session, Reset: true})
		return a, cmd

	case warmedUpMsg:
		if msg.Err != nil {
			logging.Warn("warm-up incomplete", "err", msg.Err)
		}
		return a, nil

	case feed.SourcesChangedMsg:
		if err := config.SaveSources(a.deps.SourcesPath, msg.Sources); err != nil {
			logging.Error("saving sources failed", "err", err)
			a.status = "Could not save pinned sources: " + err.Error()
		}
		return a, nil

	case feed.ActiveSourceMsg:
		if err := config.SaveUIState(a.deps.StatePath, config.UIState{LastSource: msg.SourceID}); err != nil {
			logging.Warn("saving ui state failed", "err", err)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.feed, cmd = a.feed.Update(msg)
	return a, cmd
}

// View renders the feed with the app's transient status appended.
func (a App) View() string {
	s := a.feed.View()
	if a.status != "" {
		s += "\n" + common.StatusBarStyle.Render(a.status)
	}
	return s
}
