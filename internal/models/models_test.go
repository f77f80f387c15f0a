package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func validForm() MovieForm {
	return MovieForm{
		Title:    "Heat",
		Year:     "1995",
		Runtime:  "170 min",
		Genre:    "Crime",
		Director: "Michael Mann",
	}
}

func TestMovieFormValidate(t *testing.T) {
	t.Run("valid form", func(t *testing.T) {
		if errs := validForm().Validate(); errs != nil {
			t.Fatalf("expected no errors, got %v", errs)
		}
	})

	t.Run("year", func(t *testing.T) {
		tc := []struct {
			name string
			year string
			want string
		}{
			{name: "four digits", year: "2023", want: ""},
			{name: "letters", year: "abc", want: MsgYearFormat},
			{name: "three digits", year: "202", want: MsgYearFormat},
			{name: "five digits", year: "20231", want: MsgYearFormat},
			{name: "empty", year: "", want: MsgYearRequired},
			{name: "blank", year: "   ", want: MsgYearRequired},
			{name: "non-ascii digits", year: "２０２３", want: MsgYearFormat},
			{name: "padded", year: " 2023", want: MsgYearFormat},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				form := validForm()
				form.Year = tt.year
				errs := form.Validate()

				if tt.want == "" {
					if errs != nil {
						t.Fatalf("expected no errors, got %v", errs)
					}
					return
				}
				if got := errs[FieldYear]; got != tt.want {
					t.Errorf("year %q: got %q, want %q", tt.year, got, tt.want)
				}
			})
		}
	})

	t.Run("collects every failing field", func(t *testing.T) {
		errs := MovieForm{Title: "  ", Year: "", Runtime: "\t", Genre: "", Director: ""}.Validate()

		want := map[string]string{
			FieldTitle:    MsgTitleRequired,
			FieldYear:     MsgYearRequired,
			FieldRuntime:  MsgRuntimeRequired,
			FieldGenre:    MsgGenreRequired,
			FieldDirector: MsgDirectorRequired,
		}
		if len(errs) != len(want) {
			t.Fatalf("expected %d errors, got %d: %v", len(want), len(errs), errs)
		}
		for field, msg := range want {
			if errs[field] != msg {
				t.Errorf("%s: got %q, want %q", field, errs[field], msg)
			}
		}

		fields := errs.Fields()
		if strings.Join(fields, ",") != "title,year,runtime,genre,director" {
			t.Errorf("unexpected field order %v", fields)
		}
		if !strings.HasPrefix(errs.Error(), MsgTitleRequired) {
			t.Errorf("Error() should start with the title message, got %q", errs.Error())
		}
	})

	t.Run("runtime has no format constraint", func(t *testing.T) {
		form := validForm()
		form.Runtime = "about two hours"
		if errs := form.Validate(); errs != nil {
			t.Errorf("expected no errors, got %v", errs)
		}
	})
}

func TestMovieFormRequests(t *testing.T) {
	form := MovieForm{
		Title:    "  Alien ",
		Year:     "1979",
		Runtime:  " 117 min",
		Genre:    "Sci-Fi ",
		Director: " Ridley Scott",
	}

	t.Run("Input trims values", func(t *testing.T) {
		in := form.Input("ripley")
		if in.Title != "Alien" || in.Runtime != "117 min" || in.Genre != "Sci-Fi" || in.Director != "Ridley Scott" {
			t.Errorf("expected trimmed values, got %+v", in)
		}
		if in.Username != "ripley" {
			t.Errorf("expected username ripley, got %q", in.Username)
		}
	})

	t.Run("Update sets every field", func(t *testing.T) {
		up := form.Update("ripley")
		if up.Empty() {
			t.Fatal("expected non-empty update")
		}
		if *up.Title != "Alien" || *up.Year != "1979" {
			t.Errorf("unexpected update %+v", up)
		}
	})

	t.Run("partial update omits nil fields", func(t *testing.T) {
		title := "Aliens"
		data, err := json.Marshal(MovieUpdate{Title: &title, Username: "ripley"})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		got := string(data)
		if got != `{"title":"Aliens","username":"ripley"}` {
			t.Errorf("unexpected JSON %s", got)
		}
	})
}

func TestMovieFormFields(t *testing.T) {
	var form MovieForm
	for _, f := range FormFields() {
		if err := form.Set(f, f+"-value"); err != nil {
			t.Fatalf("Set(%s) error = %v", f, err)
		}
		if got := form.Get(f); got != f+"-value" {
			t.Errorf("Get(%s) = %q", f, got)
		}
	}

	if err := form.Set("plot", "x"); err == nil {
		t.Error("expected error for unknown field")
	}

	m := Movie{ID: 4, Title: "Up", Year: "2009", Genre: "Animation", Director: "Pete Docter", Runtime: "96 min"}
	if FormFromMovie(m).Validate() != nil {
		t.Error("form from a complete movie should validate")
	}
}

func TestIDs(t *testing.T) {
	got := IDs([]Movie{{ID: 3}, {ID: 1}, {ID: 2}})
	if len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Errorf("IDs() = %v", got)
	}
}
