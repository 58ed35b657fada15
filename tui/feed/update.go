package feed

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampWindow()
		if st, ok := m.activeState(); ok && !m.loading {
			m.reportVisibility(st)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case LoadedMsg:
		st, ok := m.activeState()
		if !ok || st.Source().Identifier() != msg.SourceID {
			// Stale: the user moved on. The state keeps its target until
			// the tab is shown again.
			return m, nil
		}
		if st.IsLoading() {
			return m, pollLoaded(msg.SourceID)
		}
		m.display(st)
		return m, nil

	case SessionChangedMsg:
		m.session = msg.Session
		if !msg.Reset {
			return m, nil
		}
		m.resetView()
		return m, tea.Batch(m.loadActive(false), m.spinner.Tick)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleHints):
		m.showHints = !m.showHints
		m.help.ShowAll = m.showHints

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.posts))
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.posts))

	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)

	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			break
		}
		m.loading = true
		m.status = ""
		return m, tea.Batch(m.loadActive(true), m.spinner.Tick)

	case key.Matches(msg, m.keys.Unpin):
		return m.unpinActive()

	case key.Matches(msg, m.keys.SavePosition):
		p, ok := m.SelectedPost()
		st, hasState := m.activeState()
		if !ok || !hasState {
			break
		}
		st.QueueSave(p.ID)
		m.status = "Position saved."

	case key.Matches(msg, m.keys.Open):
		if p, ok := m.SelectedPost(); ok {
			return m, openURL(p.URL)
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if len(m.posts) == 0 {
		return
	}
	st, ok := m.activeState()
	if !ok {
		return
	}
	st.UserDidInteract()
	m.cursor = min(max(m.cursor+delta, 0), len(m.posts)-1)
	m.clampWindow()
	m.reportVisibility(st)
}

func (m Model) switchTab(step int) (Model, tea.Cmd) {
	if len(m.sources) < 2 {
		return m, nil
	}
	m.leaveActive()
	m.active = (m.active + step + len(m.sources)) % len(m.sources)
	m.resetView()

	id := m.sources[m.active].Identifier()
	return m, tea.Batch(
		m.loadActive(false),
		m.spinner.Tick,
		func() tea.Msg { return ActiveSourceMsg{SourceID: id} },
	)
}

func (m Model) unpinActive() (Model, tea.Cmd) {
	if len(m.sources) <= 1 {
		m.status = "Cannot unpin the last source."
		return m, nil
	}
	m.leaveActive()
	removed := m.sources[m.active]
	m.sources = slices.Delete(slices.Clone(m.sources), m.active, m.active+1)
	m.cache.PruneSources(m.sources...)
	if m.active >= len(m.sources) {
		m.active = len(m.sources) - 1
	}
	m.resetView()
	m.status = "Unpinned " + removed.DisplayName() + "."

	sources := m.Sources()
	id := m.sources[m.active].Identifier()
	return m, tea.Batch(
		m.loadActive(false),
		m.spinner.Tick,
		func() tea.Msg { return SourcesChangedMsg{Sources: sources} },
		func() tea.Msg { return ActiveSourceMsg{SourceID: id} },
	)
}

func (m *Model) resetView() {
	m.posts = nil
	m.cursor = 0
	m.start = 0
	m.onScreen = nil
	m.err = nil
	m.loading = len(m.sources) > 0
}
