package catalog

import (
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/desertthunder/marquee/internal/models"
)

// NormalizeMovies sorts raw records and maps them to [models.Movie].
//
// Ordering is a stable sort on a composite key:
//  1. titles with no letters left after stripping leading non-letters sort last
//  2. then by the stripped title, compared case-insensitively
//
// Equal keys keep their input order. No record is ever dropped.
func NormalizeMovies(records []models.MovieRecord) []models.Movie {
	keyed := make([]keyedRecord, len(records))
	for i, r := range records {
		stripped := stripLeadingNonLetters(r.Title)
		keyed[i] = keyedRecord{
			record:  r,
			noAlpha: stripped == "",
			key:     strings.ToLower(stripped),
		}
	}

	slices.SortStableFunc(keyed, func(a, b keyedRecord) int {
		if a.noAlpha != b.noAlpha {
			if a.noAlpha {
				return 1
			}
			return -1
		}
		return strings.Compare(a.key, b.key)
	})

	movies := make([]models.Movie, len(keyed))
	for i, k := range keyed {
		movies[i] = toMovie(k.record)
	}
	return movies
}

// NormalizeGenres maps `[name, count]` tuples to [models.Genre], skipping malformed tuples.
func NormalizeGenres(records []models.GenreRecord) []models.Genre {
	genres := make([]models.Genre, 0, len(records))
	for _, rec := range records {
		if len(rec) != 2 {
			continue
		}
		name, ok := rec[0].(string)
		if !ok {
			continue
		}
		count, ok := toCount(rec[1])
		if !ok {
			continue
		}
		genres = append(genres, models.Genre{Name: name, Count: count})
	}
	return genres
}

type keyedRecord struct {
	record  models.MovieRecord
	noAlpha bool
	key     string
}

func toMovie(r models.MovieRecord) models.Movie {
	genres := make([]string, len(r.Genres))
	copy(genres, r.Genres)
	return models.Movie{
		Title:    r.Title,
		Year:     r.ReleaseDate,
		Overview: r.Overview,
		Genres:   genres,
	}
}

func stripLeadingNonLetters(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
}

// toCount accepts any numeric JSON/YAML decoding of a count, truncating fractions.
func toCount(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}
