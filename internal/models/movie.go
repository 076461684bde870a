package models

import (
	"fmt"
	"strings"
	"time"
)

// AllGenresName is the label of the synthetic catalog entry that stands for "no filter".
const AllGenresName = "All"

// Movie is a normalized catalog entry. Built only by the catalog normalizer and never mutated afterwards.
type Movie struct {
	Title    string
	Year     string
	Overview string
	Genres   []string
}

// Genre is a filter option with the number of movies carrying it.
type Genre struct {
	Name  string
	Count int
}

// AllGenres derives the synthetic "All" entry whose count is the sum of every genre count.
//
// It exists for presentation only; a nil *Genre is the internal "no filter" value.
func AllGenres(genres []Genre) Genre {
	total := 0
	for _, g := range genres {
		total += g.Count
	}
	return Genre{Name: AllGenresName, Count: total}
}

// FilterName returns the query value for a filter, "" when unfiltered.
func FilterName(g *Genre) string {
	if g == nil {
		return ""
	}
	return g.Name
}

// SameFilter reports whether two filters select the same genre.
func SameFilter(a, b *Genre) bool {
	return FilterName(a) == FilterName(b)
}

// Page is one loaded slice of the remote collection.
//
// HasMore is the short-page heuristic: a page that filled its size is assumed to have a successor.
type Page struct {
	Items   []Movie
	HasMore bool
}

// MovieRecord is the raw movie payload returned by the catalog API and read from seed files.
type MovieRecord struct {
	ID          string   `json:"id" yaml:"id"`
	Genres      []string `json:"genres" yaml:"genres"`
	ReleaseDate string   `json:"release_date" yaml:"release_date"`
	Title       string   `json:"title" yaml:"title"`
	Tagline     string   `json:"tagline" yaml:"tagline"`
	Overview    string   `json:"overview" yaml:"overview"`
	URL         string   `json:"url" yaml:"url"`
}

// GenreRecord is a raw `[name, count]` tuple from the genres endpoint.
type GenreRecord []any

// PersistedMovie is a movie row owned by the fixture backend.
type PersistedMovie struct {
	id        string
	sequence  int
	record    MovieRecord
	createdAt time.Time
	updatedAt time.Time
}

// NewPersistedMovie creates a [PersistedMovie] from a raw record.
//
// The ID is assigned by the repository on Create unless the record carries one.
func NewPersistedMovie(sequence int, record MovieRecord) *PersistedMovie {
	now := time.Now()
	return &PersistedMovie{
		id:        record.ID,
		sequence:  sequence,
		record:    record,
		createdAt: now,
		updatedAt: now,
	}
}

// RestorePersistedMovie rebuilds a movie from stored columns.
func RestorePersistedMovie(id string, sequence int, record MovieRecord, createdAt, updatedAt time.Time) *PersistedMovie {
	record.ID = id
	return &PersistedMovie{
		id:        id,
		sequence:  sequence,
		record:    record,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (m *PersistedMovie) ID() string           { return m.id }
func (m *PersistedMovie) Sequence() int        { return m.sequence }
func (m *PersistedMovie) CreatedAt() time.Time { return m.createdAt }
func (m *PersistedMovie) UpdatedAt() time.Time { return m.updatedAt }
func (m *PersistedMovie) Title() string        { return m.record.Title }
func (m *PersistedMovie) Genres() []string     { return m.record.Genres }

// Record returns the API representation of the movie.
func (m *PersistedMovie) Record() MovieRecord {
	r := m.record
	r.ID = m.id
	if r.Genres == nil {
		r.Genres = []string{}
	}
	return r
}

func (m *PersistedMovie) SetID(id string)              { m.id = id }
func (m *PersistedMovie) SetSequence(seq int)          { m.sequence = seq }
func (m *PersistedMovie) SetUpdatedAt(t time.Time)     { m.updatedAt = t }
func (m *PersistedMovie) SetRecord(record MovieRecord) { m.record = record }

// Validate requires an ID and rejects blank genre names.
func (m *PersistedMovie) Validate() error {
	if m.id == "" {
		return fmt.Errorf("movie id is required")
	}
	for _, g := range m.record.Genres {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("movie %s has a blank genre", m.id)
		}
	}
	return nil
}
