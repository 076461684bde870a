// package formatter renders movie listings to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/goccy/go-json"
)

// Format is an export file format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
	JSON     Format = "json"
)

// Formats lists the supported formats in help-text order.
var Formats = []Format{CSV, Markdown, Text, JSON}

// ParseFormat accepts a format name or a common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case Text:
		return ".txt"
	case CSV:
		return ".csv"
	default:
		return ".json"
	}
}

// Export is one filtered movie listing.
type Export struct {
	Filter *models.Genre
	Movies []models.Movie
}

// Title is the heading used by the human-readable formats.
func (e *Export) Title() string {
	if e.Filter == nil {
		return "All movies"
	}
	return "Movies: " + e.Filter.Name
}

// ExportToCSV converts an Export to CSV format with columns: Title, Year, Genres, Overview
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Year", "Genres", "Overview"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range export.Movies {
		record := []string{
			movie.Title,
			movie.Year,
			strings.Join(movie.Genres, "|"),
			movie.Overview,
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

// ExportToMarkdown converts an Export to a Markdown document with a numbered movie list
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title())
	fmt.Fprintf(&buf, "**Movies**: %d\n", len(export.Movies))
	if export.Filter != nil {
		fmt.Fprintf(&buf, "**Genre**: %s\n", export.Filter.Name)
	}
	buf.WriteString("\n## Movies\n\n")

	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. **%s**%s", i+1, movie.Title, yearSuffix(movie.Year))
		if len(movie.Genres) > 0 {
			fmt.Fprintf(&buf, " _%s_", strings.Join(movie.Genres, ", "))
		}
		buf.WriteString("\n")
		if movie.Overview != "" {
			fmt.Fprintf(&buf, "   %s\n", movie.Overview)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.Title())
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(export.Movies))

	for i, movie := range export.Movies {
		fmt.Fprintf(&buf, "%d. %s%s\n", i+1, movie.Title, yearSuffix(movie.Year))
	}

	return buf.Bytes(), nil
}

type jsonMovie struct {
	Title    string   `json:"title"`
	Year     string   `json:"year,omitempty"`
	Overview string   `json:"overview,omitempty"`
	Genres   []string `json:"genres"`
}

type jsonExport struct {
	Genre  string      `json:"genre,omitempty"`
	Count  int         `json:"count"`
	Movies []jsonMovie `json:"movies"`
}

// ExportToJSON converts an Export to indented JSON
func ExportToJSON(export *Export) ([]byte, error) {
	out := jsonExport{
		Genre:  models.FilterName(export.Filter),
		Count:  len(export.Movies),
		Movies: make([]jsonMovie, len(export.Movies)),
	}
	for i, m := range export.Movies {
		genres := m.Genres
		if genres == nil {
			genres = []string{}
		}
		out.Movies[i] = jsonMovie{Title: m.Title, Year: m.Year, Overview: m.Overview, Genres: genres}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Render dispatches to the exporter for format.
func Render(export *Export, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(export)
	case Markdown:
		return ExportToMarkdown(export)
	case Text:
		return ExportToText(export)
	case JSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, format)
	}
}

// WriteExport renders export and writes it to path, creating parent directories.
//
// An empty path defaults to a name derived from the filter and format, e.g. movies_drama.md.
func WriteExport(export *Export, format Format, path string) (string, error) {
	if path == "" {
		path = FileName(export.Filter, format)
	}

	data, err := Render(export, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// FileName returns the default export file name for a filter.
func FileName(filter *models.Genre, format Format) string {
	base := "movies"
	if filter != nil {
		base += "_" + slug(filter.Name)
	}
	return base + format.Extension()
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func yearSuffix(year string) string {
	if year == "" {
		return ""
	}
	return " (" + year + ")"
}
