package paging

import (
	"context"

	"github.com/desertthunder/marquee/internal/failure"
	"github.com/desertthunder/marquee/internal/models"
)

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 10

// Loader fetches exactly one page. It never retries; a failure is returned as a classified [*failure.Failure].
type Loader interface {
	Load(ctx context.Context, cursor, pageSize int, filter *models.Genre) (models.Page, error)
}

// MovieSource returns one normalized window of the collection. Implemented by [catalog.Repository].
type MovieSource interface {
	Movies(ctx context.Context, from, limit int, genre string) ([]models.Movie, error)
}

// MovieLoader adapts a [MovieSource] to [Loader].
type MovieLoader struct {
	source MovieSource
}

// NewMovieLoader creates a loader over source.
func NewMovieLoader(source MovieSource) *MovieLoader {
	return &MovieLoader{source: source}
}

// Load fetches the window [cursor, cursor+pageSize).
//
// A page that came back full is assumed to have a successor; the next load past the end returns an empty page.
func (l *MovieLoader) Load(ctx context.Context, cursor, pageSize int, filter *models.Genre) (models.Page, error) {
	items, err := l.source.Movies(ctx, cursor, pageSize, models.FilterName(filter))
	if err != nil {
		return models.Page{}, failure.Classify(err)
	}
	if items == nil {
		items = []models.Movie{}
	}
	return models.Page{Items: items, HasMore: len(items) == pageSize}, nil
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(ctx context.Context, cursor, pageSize int, filter *models.Genre) (models.Page, error)

func (f LoaderFunc) Load(ctx context.Context, cursor, pageSize int, filter *models.Genre) (models.Page, error) {
	return f(ctx, cursor, pageSize, filter)
}

// NextCursor returns the cursor after a loaded page, if the page reported a successor.
func NextCursor(cursor, pageSize int, page models.Page) (int, bool) {
	if !page.HasMore {
		return 0, false
	}
	return cursor + pageSize, true
}

// PrevCursor returns the cursor before cursor. The first page has none.
func PrevCursor(cursor, pageSize int) (int, bool) {
	if cursor == 0 {
		return 0, false
	}
	return max(cursor-pageSize, 0), true
}
