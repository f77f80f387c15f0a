package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/moviex/internal/formatter"
)

func (m *Model) header() string {
	var parts []string
	if m.state.CurrentUsername != "" {
		parts = append(parts, "user: "+m.state.CurrentUsername)
	}
	if m.state.ShowFavoritesOnly {
		parts = append(parts, "favorites only")
	}
	if m.state.Loading {
		parts = append(parts, m.spinner.View()+" loading")
	}
	return styles.help.Render(strings.Join(parts, " • "))
}

func (m *Model) renderList() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString(m.movieList.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderDetail() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggleFav, m.keys.edit, m.keys.back, m.keys.quit})

	movie := m.state.SelectedMovie
	if movie == nil || movie.ID != m.detailID {
		return fmt.Sprintf("%s\n\n%s\n\n%s", styles.title.Render("Movie"), m.spinner.View()+" Loading...", helpView)
	}

	title := styles.title.Render(movie.Title)
	body := formatter.FormatMovie(*movie, m.state.IsFavorite(movie.ID))
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", m.header(), title, body, helpView)
}

func (m *Model) renderForm() string {
	heading := "Add Movie"
	if m.form.editing() {
		heading = fmt.Sprintf("Edit Movie #%d", m.form.editID)
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.prev, m.keys.submit, m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s", styles.title.Render(heading), m.form.view(), helpView)
}

func (m *Model) renderConfirmDelete() string {
	if m.target == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.target.Title))
	return fmt.Sprintf("%s\n%s\n\n%s", title,
		styles.warn.Render("This cannot be undone."),
		m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
}

func (m *Model) renderUsername() string {
	title := styles.title.Render("Enter a username to continue")
	hint := styles.help.Render("enter to confirm • esc to cancel")
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.username.View(), hint)
}

func (m *Model) renderError() string {
	msg := styles.banner.Render("Error: " + m.state.ErrorMessage())
	return fmt.Sprintf("%s\n\n%s", msg, styles.help.Render("Press any key to continue"))
}
