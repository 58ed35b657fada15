package feed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/CrestNiraj12/terminalfeed/domain"
	"github.com/CrestNiraj12/terminalfeed/tui/common"
)

func (m Model) View() string {
	var b strings.Builder

	title := common.AppTitleStyle.Render("TerminalFeed")
	tagline := common.TaglineStyle.Render("<pick up where you left off>")
	b.WriteString(title + tagline + "\n")
	b.WriteString(m.renderTabs() + "\n\n")

	switch {
	case len(m.sources) == 0:
		b.WriteString("  No pinned sources.\n")
	case m.loading && len(m.posts) == 0:
		b.WriteString(fmt.Sprintf("  %s Loading %s...\n", m.spinner.View(), m.sources[m.active].DisplayName()))
	case m.err != nil && len(m.posts) == 0:
		b.WriteString(common.ErrorStyle.Render("  " + errorText(m.err)))
		b.WriteString("\n\n  Press r to retry.\n")
	case len(m.posts) == 0:
		b.WriteString("  Nothing here yet.\n")
	default:
		b.WriteString(m.renderPosts())
		b.WriteString("\n")
	}

	if m.loading && len(m.posts) > 0 {
		b.WriteString(fmt.Sprintf("  %s Refreshing...\n", m.spinner.View()))
	} else if m.err != nil && len(m.posts) > 0 {
		b.WriteString(common.ErrorStyle.Render("  Showing cached posts: "+errorText(m.err)) + "\n")
	}
	if m.status != "" {
		b.WriteString(common.SuccessStyle.Render("  "+m.status) + "\n")
	}

	b.WriteString(common.StatusBarStyle.Render("  " + m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderTabs() string {
	rendered := make([]string, 0, len(m.sources))
	for i, src := range m.sources {
		if i == m.active {
			rendered = append(rendered, common.ActiveTabStyle.Render(src.DisplayName()))
		} else {
			rendered = append(rendered, common.InactiveTabStyle.Render(src.DisplayName()))
		}
	}
	return lipgloss.NewStyle().MarginLeft(2).PaddingTop(1).Render(strings.Join(rendered, " "))
}

func (m Model) renderPosts() string {
	contentWidth := max(m.width-8, 20)
	end := min(m.start+m.visibleCount(), len(m.posts))

	items := make([]string, 0, end-m.start)
	for i := m.start; i < end; i++ {
		p := m.posts[i]
		header := common.AuthorStyle.Render(p.Author)
		if p.Username != "" && p.Username != p.Author {
			header += " " + common.TimestampStyle.Render("@"+p.Username)
		}
		if !p.CreatedAt.IsZero() {
			header += "  " + common.TimestampStyle.Render(p.CreatedAt.Local().Format("Jan 02 15:04"))
		}
		if p.BoostedBy != "" {
			header += "  " + common.BoostStyle.Render("⟳ "+p.BoostedBy)
		}
		header = ansi.Truncate(header, contentWidth, "…")

		body := common.ContentStyle.Render(truncateToTwoLines(p.Content, contentWidth))
		item := header + "\n" + body
		if i == m.cursor {
			items = append(items, common.SelectedStyle.Render(item))
		} else {
			items = append(items, common.UnselectedStyle.Render(item))
		}
	}
	return lipgloss.NewStyle().MarginLeft(1).Render(strings.Join(items, "\n"))
}

// truncateToTwoLines wraps text and keeps exactly two lines so every post
// box has the same height.
func truncateToTwoLines(text string, width int) string {
	wrapped := ansi.Wrap(strings.TrimSpace(text), width, "")
	lines := strings.Split(wrapped, "\n")
	switch {
	case len(lines) < 2:
		lines = append(lines, "")
	case len(lines) > 2:
		lines = lines[:2]
		lines[1] = ansi.Truncate(lines[1], max(width-1, 1), "") + "…"
	}
	return strings.Join(lines, "\n")
}

func errorText(err error) string {
	if errors.Is(err, domain.ErrUnauthorized) {
		return "Not authorized. Check your access token, then press ctrl+a."
	}
	return "Error: " + err.Error()
}
