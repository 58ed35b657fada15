package feed

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/CrestNiraj12/terminalfeed/timeline"
)

// Lines reserved for header, tabs and status bar, and lines per post box
// (author line, two content lines, border).
const (
	reservedLines = 9
	linesPerPost  = 5
)

func (m Model) visibleCount() int {
	return max((m.height-reservedLines)/linesPerPost, 1)
}

// clampWindow keeps the cursor on screen and the window inside the list.
func (m *Model) clampWindow() {
	if len(m.posts) == 0 {
		m.cursor, m.start = 0, 0
		return
	}
	m.cursor = min(max(m.cursor, 0), len(m.posts)-1)
	visible := m.visibleCount()
	if m.cursor < m.start {
		m.start = m.cursor
	}
	if m.cursor >= m.start+visible {
		m.start = m.cursor - visible + 1
	}
	m.start = max(min(m.start, len(m.posts)-visible), 0)
}

func (m Model) windowIDs() []string {
	end := min(m.start+m.visibleCount(), len(m.posts))
	ids := make([]string, 0, end-m.start)
	for i := m.start; i < end; i++ {
		ids = append(ids, m.posts[i].ID)
	}
	return ids
}

// reportVisibility diffs the on-screen window against the last report.
// Appearances go first so the top post never drops out of the tracker
// while its successor is already on screen.
func (m *Model) reportVisibility(st *timeline.State) {
	now := m.windowIDs()
	was := mapset.NewThreadUnsafeSet(m.onScreen...)
	is := mapset.NewThreadUnsafeSet(now...)

	for _, id := range now {
		if !was.Contains(id) {
			st.PostDidAppear(id)
		}
	}
	for _, id := range m.onScreen {
		if !is.Contains(id) {
			st.PostDidDisappear(id)
		}
	}
	m.onScreen = now
}

// leaveActive tears the active list down while its state stays cached.
// Posts disappear bottom-up so the anchor is never moved on the way out.
func (m *Model) leaveActive() {
	if st, ok := m.activeState(); ok {
		st.PrepareForTemporaryRemoval()
		for i := len(m.onScreen) - 1; i >= 0; i-- {
			st.PostDidDisappear(m.onScreen[i])
		}
	}
	m.onScreen = nil
}

// display syncs the view with st after a load and applies its scroll
// target. A cold restore is completed as soon as the target is on screen.
func (m *Model) display(st *timeline.State) {
	snap := st.Snapshot()
	m.posts = snap.Posts
	m.err = snap.Err
	m.loading = false
	m.onScreen = nil

	if target, ok := st.TargetForInitialDisplay(); ok {
		if idx, found := st.IndexOf(target); found {
			m.cursor = idx
			m.start = idx
			if snap.IsRestoringPosition && snap.PendingRestoreID == target {
				st.CompletePositionRestore(target)
				st.ResetInteractionState(target)
			}
		}
	}
	m.clampWindow()
	m.reportVisibility(st)
}
