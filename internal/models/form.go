package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Form field names, in display order.
const (
	FieldTitle    = "title"
	FieldYear     = "year"
	FieldRuntime  = "runtime"
	FieldGenre    = "genre"
	FieldDirector = "director"
)

// Validation messages shown next to each field.
const (
	MsgTitleRequired    = "Title is required"
	MsgYearRequired     = "Year is required"
	MsgYearFormat       = "Year must be a 4-digit number"
	MsgRuntimeRequired  = "Runtime is required"
	MsgGenreRequired    = "Genre is required"
	MsgDirectorRequired = "Director is required"
)

var (
	fieldOrder  = []string{FieldTitle, FieldYear, FieldRuntime, FieldGenre, FieldDirector}
	yearPattern = regexp.MustCompile(`^[0-9]{4}$`)
)

// MovieForm holds raw add/edit input as typed by the user.
type MovieForm struct {
	Title    string
	Year     string
	Runtime  string
	Genre    string
	Director string
}

// FormFromMovie pre-fills a form for editing.
func FormFromMovie(m Movie) MovieForm {
	return MovieForm{
		Title:    m.Title,
		Year:     m.Year,
		Runtime:  m.Runtime,
		Genre:    m.Genre,
		Director: m.Director,
	}
}

// FormErrors maps a field name to its validation message.
type FormErrors map[string]string

// Error implements error, listing messages in field order.
func (e FormErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e FormErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the failing fields in form order.
func (e FormErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, f := range fieldOrder {
		if e.Has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Validate checks every field and returns all failures, or nil when the form is valid.
//
// The year must be exactly four ASCII digits as typed; surrounding whitespace fails the format check.
func (f MovieForm) Validate() FormErrors {
	errs := FormErrors{}

	if strings.TrimSpace(f.Title) == "" {
		errs[FieldTitle] = MsgTitleRequired
	}

	if strings.TrimSpace(f.Year) == "" {
		errs[FieldYear] = MsgYearRequired
	} else if !yearPattern.MatchString(f.Year) {
		errs[FieldYear] = MsgYearFormat
	}

	if strings.TrimSpace(f.Runtime) == "" {
		errs[FieldRuntime] = MsgRuntimeRequired
	}

	if strings.TrimSpace(f.Genre) == "" {
		errs[FieldGenre] = MsgGenreRequired
	}

	if strings.TrimSpace(f.Director) == "" {
		errs[FieldDirector] = MsgDirectorRequired
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Trimmed returns the form with surrounding whitespace removed from every value.
func (f MovieForm) Trimmed() MovieForm {
	return MovieForm{
		Title:    strings.TrimSpace(f.Title),
		Year:     strings.TrimSpace(f.Year),
		Runtime:  strings.TrimSpace(f.Runtime),
		Genre:    strings.TrimSpace(f.Genre),
		Director: strings.TrimSpace(f.Director),
	}
}

// Get returns the value of field.
func (f MovieForm) Get(field string) string {
	switch field {
	case FieldTitle:
		return f.Title
	case FieldYear:
		return f.Year
	case FieldRuntime:
		return f.Runtime
	case FieldGenre:
		return f.Genre
	case FieldDirector:
		return f.Director
	}
	return ""
}

// Set assigns value to field. Unknown fields are an error.
func (f *MovieForm) Set(field, value string) error {
	switch field {
	case FieldTitle:
		f.Title = value
	case FieldYear:
		f.Year = value
	case FieldRuntime:
		f.Runtime = value
	case FieldGenre:
		f.Genre = value
	case FieldDirector:
		f.Director = value
	default:
		return fmt.Errorf("unknown form field %q", field)
	}
	return nil
}

// FormFields returns the field names in display order.
func FormFields() []string {
	out := make([]string, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// Input builds a create request from the trimmed form.
func (f MovieForm) Input(username string) MovieInput {
	t := f.Trimmed()
	return MovieInput{
		Title:    t.Title,
		Year:     t.Year,
		Genre:    t.Genre,
		Director: t.Director,
		Runtime:  t.Runtime,
		Username: username,
	}
}

// Update builds a full-field update request from the trimmed form.
func (f MovieForm) Update(username string) MovieUpdate {
	t := f.Trimmed()
	return MovieUpdate{
		Title:    &t.Title,
		Year:     &t.Year,
		Genre:    &t.Genre,
		Director: &t.Director,
		Runtime:  &t.Runtime,
		Username: username,
	}
}
