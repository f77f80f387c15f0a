package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moviex/internal/models"
)

var fieldLabels = map[string]string{
	models.FieldTitle:    "Title",
	models.FieldYear:     "Year",
	models.FieldRuntime:  "Runtime",
	models.FieldGenre:    "Genre",
	models.FieldDirector: "Director",
}

// movieForm is the add/edit form: one text input per [models.MovieForm] field.
type movieForm struct {
	fields []string
	inputs []textinput.Model
	focus  int
	errs   models.FormErrors
	editID int // zero when adding
}

func newMovieForm(initial models.MovieForm, editID int) movieForm {
	fields := models.FormFields()
	inputs := make([]textinput.Model, len(fields))
	for i, field := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 120
		ti.Placeholder = fieldLabels[field]
		ti.SetValue(initial.Get(field))
		inputs[i] = ti
	}
	inputs[0].Focus()
	return movieForm{fields: fields, inputs: inputs, editID: editID}
}

func (f movieForm) editing() bool { return f.editID != 0 }

func (f movieForm) onLastField() bool { return f.focus == len(f.inputs)-1 }

// value collects the raw input of every field.
func (f movieForm) value() models.MovieForm {
	var form models.MovieForm
	for i, field := range f.fields {
		_ = form.Set(field, f.inputs[i].Value())
	}
	return form
}

func (f *movieForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f movieForm) update(msg tea.Msg) (movieForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f movieForm) view() string {
	var b strings.Builder
	for i, field := range f.fields {
		cursor := "  "
		if i == f.focus {
			cursor = "> "
		}
		b.WriteString(cursor)
		b.WriteString(styles.label.Render(fieldLabels[field]))
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := f.errs[field]; ok {
			b.WriteString("    ")
			b.WriteString(styles.err.Render(msg))
			b.WriteString("\n")
		}
	}
	return b.String()
}
