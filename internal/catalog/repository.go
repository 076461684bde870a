// Package catalog turns raw catalog API payloads into domain values.
//
// [Repository] is the fetch boundary: every error it returns is a classified [*failure.Failure],
// and every successful payload has been passed through the normalizers in mapper.go.
package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/failure"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
)

// GenreSource fetches the genre catalog once per call.
type GenreSource interface {
	Genres(ctx context.Context) ([]models.Genre, error)
}

// Repository fetches movies and genres and classifies every failure.
type Repository struct {
	fetcher services.CatalogFetcher
	logger  *log.Logger
}

// NewRepository creates a Repository. A nil logger discards output.
func NewRepository(fetcher services.CatalogFetcher, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Repository{fetcher: fetcher, logger: logger}
}

// Movies fetches and normalizes one window of the collection.
func (r *Repository) Movies(ctx context.Context, from, limit int, genre string) ([]models.Movie, error) {
	records, err := safeCall(func() ([]models.MovieRecord, error) {
		return r.fetcher.FetchPage(ctx, from, limit, genre)
	})
	if err != nil {
		f := failure.Classify(err)
		r.logger.Debug("movie fetch failed", "from", from, "limit", limit, "genre", genre, "kind", f.Kind, "err", err)
		return nil, f
	}
	return NormalizeMovies(records), nil
}

// Genres fetches and normalizes the genre catalog.
func (r *Repository) Genres(ctx context.Context) ([]models.Genre, error) {
	records, err := safeCall(func() ([]models.GenreRecord, error) {
		return r.fetcher.FetchGenres(ctx)
	})
	if err != nil {
		f := failure.Classify(err)
		r.logger.Debug("genre fetch failed", "kind", f.Kind, "err", err)
		return nil, f
	}
	return NormalizeGenres(records), nil
}

// safeCall converts a panic in the transport into an error so nothing escapes the boundary.
func safeCall[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("transport panic: %v", rec)
		}
	}()
	return fn()
}
