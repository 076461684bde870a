package controller

import (
	"slices"

	"github.com/desertthunder/marquee/internal/failure"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/paging"
)

// State is the single UI state. The only implementations are [Loading], [Success] and [Error].
type State interface {
	isState()
}

// Loading is the state before the first page of the initial stream resolves.
type Loading struct{}

// Success holds the stream being shown, the genre catalog, and the selected filter.
//
// Busy is set while a filter change is loading; Stream still holds the previous data until it completes.
type Success struct {
	Stream   *paging.Stream
	Genres   []models.Genre
	Selected *models.Genre
	Busy     bool
}

// Error replaces everything else when a catalog fetch or a filter reload fails.
type Error struct {
	Failure *failure.Failure
}

func (Loading) isState() {}
func (Success) isState() {}
func (Error) isState()   {}

// Match dispatches on the variant of s. Each handler must be supplied, so adding a variant breaks every caller.
func Match[R any](s State, onLoading func(Loading) R, onSuccess func(Success) R, onError func(Error) R) R {
	switch v := s.(type) {
	case Success:
		return onSuccess(v)
	case Error:
		return onError(v)
	case Loading:
		return onLoading(v)
	default:
		return onLoading(Loading{})
	}
}

// withGenres returns a copy of s with the catalog replaced and Busy cleared.
func (s Success) withGenres(genres []models.Genre) Success {
	s.Genres = slices.Clone(genres)
	s.Busy = false
	return s
}

// withBusy returns a copy of s marked busy on behalf of filter.
func (s Success) withBusy(filter *models.Genre) Success {
	s.Selected = filter
	s.Busy = true
	return s
}

// Intent is user input delivered through [Controller.Dispatch].
type Intent interface {
	isIntent()
}

// RequestCatalog fetches the genre catalog once.
type RequestCatalog struct{}

// SelectFilter switches the list to Genre. A nil Genre removes the filter.
type SelectFilter struct {
	Genre *models.Genre
}

// ItemActivated reports that the user opened a movie.
type ItemActivated struct {
	Movie models.Movie
}

func (RequestCatalog) isIntent() {}
func (SelectFilter) isIntent()   {}
func (ItemActivated) isIntent()  {}

// Effect is a one-off notification delivered at most once to current subscribers of [Controller.Effects].
type Effect interface {
	isEffect()
}

// NavigateToDetails asks the presentation layer to show a movie.
type NavigateToDetails struct {
	Movie models.Movie
}

func (NavigateToDetails) isEffect() {}
