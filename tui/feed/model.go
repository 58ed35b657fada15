package feed

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/terminalfeed/domain"
	"github.com/CrestNiraj12/terminalfeed/timeline"
	"github.com/CrestNiraj12/terminalfeed/tui/common"
)

const (
	defaultHeight = 24
	defaultWidth  = 80
)

// --- Messages ---

// LoadedMsg is sent when a load of SourceID returns. The posts themselves
// live in the source's timeline.State.
type LoadedMsg struct {
	SourceID string
}

// SourcesChangedMsg carries the pinned sources after one was unpinned.
type SourcesChangedMsg struct {
	Sources []domain.ContentSource
}

// ActiveSourceMsg is sent when a different tab becomes active.
type ActiveSourceMsg struct {
	SourceID string
}

// SessionChangedMsg swaps the collaborators used for every source. Reset
// drops what is on screen and reloads the active source.
type SessionChangedMsg struct {
	Session timeline.Session
	Reset   bool
}

// --- Model ---

// Model renders the pinned sources as tabs, one scrollable list each.
// Per-source state (posts, scroll anchor) lives in the shared cache so it
// survives tab switches.
type Model struct {
	cache   *timeline.Cache
	session timeline.Session
	sources []domain.ContentSource
	active  int

	posts    []domain.Post
	cursor   int
	start    int      // index of the topmost post on screen
	onScreen []string // ids last reported as visible, top to bottom
	loading  bool
	err      error
	status   string

	width     int
	height    int
	keys      common.KeyMap
	help      help.Model
	spinner   spinner.Model
	showHints bool
}

// New creates a feed model. activeID selects the initial tab by source
// identifier; an unknown id selects the first tab.
func New(cache *timeline.Cache, session timeline.Session, sources []domain.ContentSource, activeID string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))

	active := 0
	for i, src := range sources {
		if src.Identifier() == activeID {
			active = i
			break
		}
	}

	return Model{
		cache:   cache,
		session: session,
		sources: append([]domain.ContentSource(nil), sources...),
		active:  active,
		loading: len(sources) > 0,
		width:   defaultWidth,
		height:  defaultHeight,
		keys:    common.DefaultKeyMap(),
		help:    help.New(),
		spinner: s,
	}
}

// Init starts loading the active source.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadActive(false),
		m.spinner.Tick,
	)
}

// Sources returns the pinned sources in tab order.
func (m Model) Sources() []domain.ContentSource {
	return append([]domain.ContentSource(nil), m.sources...)
}

func (m Model) ActiveSource() (domain.ContentSource, bool) {
	if len(m.sources) == 0 {
		return domain.ContentSource{}, false
	}
	return m.sources[m.active], true
}

func (m Model) Session() timeline.Session {
	return m.session
}

// SelectedPost returns the post under the cursor.
func (m Model) SelectedPost() (domain.Post, bool) {
	if m.cursor < 0 || m.cursor >= len(m.posts) {
		return domain.Post{}, false
	}
	return m.posts[m.cursor], true
}

func (m Model) activeState() (*timeline.State, bool) {
	src, ok := m.ActiveSource()
	if !ok {
		return nil, false
	}
	return m.cache.ViewModel(src, m.session), true
}
