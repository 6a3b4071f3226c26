package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	var body string
	switch m.view {
	case ListView:
		body = m.renderList()
	case DetailView:
		body = m.renderDetail()
	case ConfirmView:
		body = m.renderConfirm()
	case RateView:
		body = m.renderRate()
	case SearchView:
		body = m.renderSearch()
	case ResultsView:
		body = m.renderResults()
	}

	if m.status != "" {
		body = fmt.Sprintf("%s\n\n%s", body, m.status)
	}
	return body
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.add, m.keys.edit, m.keys.remove, m.keys.refresh, m.keys.quit}
	if len(m.movies.Items()) == 0 {
		empty := styles.muted.Render("No movies yet. Press a to add one.")
		return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(m.movies.Title), empty, m.help.ShortHelpView(helpKeys))
	}
	return fmt.Sprintf("%s\n\n%s", m.movies.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	mv := m.selected
	title := styles.title.Render(fmt.Sprintf("%s %s", styles.rank.Render(fmt.Sprintf("#%d", mv.Rank)), mv.Movie))

	rating := styles.muted.Render("not rated yet")
	if mv.IsRated() {
		rating = mv.RatingText() + " / 10"
	}

	width := m.width - 16
	if width < 20 {
		width = 60
	}

	rows := []string{
		row("Rating", rating),
		row("Review", mv.ReviewText()),
		row("Poster", mv.ImgURL),
		row("About", lipgloss.NewStyle().Width(width).Render(mv.Description)),
	}

	helpKeys := []key.Binding{m.keys.edit, m.keys.remove, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", title, styles.detail.Render(strings.Join(rows, "\n")), m.help.ShortHelpView(helpKeys))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, styles.label.Render(label), value)
}

func (m *Model) renderConfirm() string {
	title := styles.warn.Render(fmt.Sprintf("Delete %s?", m.selected.Movie))
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n\n%s", title, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderRate() string {
	title := styles.title.Render(fmt.Sprintf("Rate %s", m.selected.Movie))
	save := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save"))
	helpKeys := []key.Binding{save, m.keys.next, m.keys.back}

	return fmt.Sprintf("%s\n%s\n%s\n\n%s\n%s\n\n%s",
		title,
		styles.label.Render("Rating"), m.rating.View(),
		styles.label.Render("Review"), m.review.View(),
		m.help.ShortHelpView(helpKeys),
	)
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Add a Movie")
	search := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
	helpKeys := []key.Binding{search, m.keys.back}
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.query.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderResults() string {
	add := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add"))
	helpKeys := []key.Binding{add, m.keys.back, m.keys.quit}
	if len(m.results.Items()) == 0 {
		empty := styles.muted.Render(fmt.Sprintf("No results for %q.", m.query.Value()))
		return fmt.Sprintf("%s\n\n%s", empty, m.help.ShortHelpView(helpKeys))
	}
	return fmt.Sprintf("%s\n\n%s", m.results.View(), m.help.ShortHelpView(helpKeys))
}
