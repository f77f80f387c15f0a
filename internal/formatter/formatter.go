// package formatter renders movie lists as terminal tables, CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// Formats lists every supported [Format].
func Formats() []Format {
	return []Format{FormatTable, FormatCSV, FormatMarkdown, FormatText, FormatJSON}
}

// ParseFormat accepts a format name or a common alias ("markdown", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Ext is the file extension written for f.
func (f Format) Ext() string {
	if f == FormatTable {
		return "table.txt"
	}
	return string(f)
}

// Catalog is a list of movies plus the favorite marks of one user.
type Catalog struct {
	Title       string         `json:"title,omitempty"`
	Username    string         `json:"username,omitempty"`
	Movies      []models.Movie `json:"movies"`
	FavoriteIDs []int          `json:"favorite_ids"`
	ExportedAt  time.Time      `json:"exported_at"`
}

// NewCatalog builds a [Catalog] stamped with the current time.
func NewCatalog(title, username string, movies []models.Movie, favoriteIDs []int) *Catalog {
	if movies == nil {
		movies = []models.Movie{}
	}
	if favoriteIDs == nil {
		favoriteIDs = []int{}
	}
	return &Catalog{Title: title, Username: username, Movies: movies, FavoriteIDs: favoriteIDs, ExportedAt: time.Now().UTC()}
}

func (c *Catalog) isFavorite(id int) bool {
	return slices.Contains(c.FavoriteIDs, id)
}

func (c *Catalog) heading() string {
	if c.Title != "" {
		return c.Title
	}
	return "Movies"
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// ExportToTable renders movies as a bordered terminal table. Favorites are marked with ★.
func ExportToTable(c *Catalog) ([]byte, error) {
	rows := make([][]string, 0, len(c.Movies))
	for _, m := range c.Movies {
		rows = append(rows, []string{
			strconv.Itoa(m.ID), favoriteMark(c.isFavorite(m.ID)), m.Title, m.Year, m.Genre, m.Director, m.Runtime,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "★", "Title", "Year", "Genre", "Director", "Runtime").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var buf bytes.Buffer
	buf.WriteString(t.String())
	buf.WriteString(fmt.Sprintf("\n%d movies\n", len(c.Movies)))
	return buf.Bytes(), nil
}

// ExportToCSV converts movies to CSV with columns: ID, Title, Year, Genre, Director, Runtime, Favorite
func ExportToCSV(c *Catalog) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Genre", "Director", "Runtime", "Favorite"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range c.Movies {
		record := []string{
			strconv.Itoa(m.ID),
			m.Title,
			m.Year,
			m.Genre,
			m.Director,
			m.Runtime,
			strconv.FormatBool(c.isFavorite(m.ID)),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts movies to a Markdown document with a pipe table.
func ExportToMarkdown(c *Catalog) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", c.heading()))
	if c.Username != "" {
		buf.WriteString(fmt.Sprintf("**User**: %s\n", c.Username))
	}
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n", len(c.Movies)))
	buf.WriteString(fmt.Sprintf("**Favorites**: %d\n\n", len(c.FavoriteIDs)))

	buf.WriteString("| ID | Title | Year | Genre | Director | Runtime | Favorite |\n")
	buf.WriteString("|---|---|---|---|---|---|---|\n")
	for _, m := range c.Movies {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s |\n",
			m.ID, mdEscape(m.Title), mdEscape(m.Year), mdEscape(m.Genre),
			mdEscape(m.Director), mdEscape(m.Runtime), favoriteMark(c.isFavorite(m.ID))))
	}

	return buf.Bytes(), nil
}

// ExportToText converts movies to a numbered plain text list.
func ExportToText(c *Catalog) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s: %d\n\n", c.heading(), len(c.Movies)))
	for i, m := range c.Movies {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) - %s [%s, %s]", i+1, m.Title, m.Year, m.Director, m.Genre, m.Runtime))
		if c.isFavorite(m.ID) {
			buf.WriteString(" ★")
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the whole catalog, including favorite ids and export time.
func ExportToJSON(c *Catalog) ([]byte, error) {
	return shared.MarshalJSON(c, true)
}

// Export encodes c in format f.
func Export(c *Catalog, f Format) ([]byte, error) {
	switch f {
	case FormatTable:
		return ExportToTable(c)
	case FormatCSV:
		return ExportToCSV(c)
	case FormatMarkdown:
		return ExportToMarkdown(c)
	case FormatText:
		return ExportToText(c)
	case FormatJSON:
		return ExportToJSON(c)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// Render writes c to w in format f.
func Render(w io.Writer, c *Catalog, f Format) error {
	data, err := Export(c, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteExport writes c to a file in format f and returns its path.
//
// An empty path defaults to movies.{ext} in the working directory; a directory path
// gets movies.{ext} inside it.
func WriteExport(c *Catalog, f Format, path string) (string, error) {
	name := "movies." + f.Ext()
	if path == "" {
		path = name
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, name)
	}

	data, err := Export(c, f)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

// FormatMovie renders a single movie as aligned "Field: value" lines.
func FormatMovie(m models.Movie, favorite bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-9s %d\n", "ID:", m.ID)
	fmt.Fprintf(&b, "%-9s %s\n", "Title:", m.Title)
	fmt.Fprintf(&b, "%-9s %s\n", "Year:", m.Year)
	fmt.Fprintf(&b, "%-9s %s\n", "Genre:", m.Genre)
	fmt.Fprintf(&b, "%-9s %s\n", "Director:", m.Director)
	fmt.Fprintf(&b, "%-9s %s\n", "Runtime:", m.Runtime)
	fmt.Fprintf(&b, "%-9s %s\n", "Favorite:", yesNo(favorite))
	return b.String()
}

func favoriteMark(fav bool) string {
	if fav {
		return "★"
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
