package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/marquee/internal/models"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = genreItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.movie.Year == "" {
		return i.movie.Title
	}
	return fmt.Sprintf("%s (%s)", i.movie.Title, i.movie.Year)
}
func (i movieItem) Description() string {
	return strings.Join(i.movie.Genres, " • ")
}

// genreItem is one picker entry. A nil genre is the "All" entry.
type genreItem struct {
	genre    *models.Genre
	count    int
	selected bool
}

func (i genreItem) name() string {
	if i.genre == nil {
		return models.AllGenresName
	}
	return i.genre.Name
}

func (i genreItem) FilterValue() string { return i.name() }
func (i genreItem) Title() string {
	label := fmt.Sprintf("%s (%d)", i.name(), i.count)
	if i.selected {
		return "• " + label
	}
	return label
}
func (i genreItem) Description() string { return "" }

// genreItems builds the picker entries: the synthetic "All" first, then the catalog in its given order.
func genreItems(genres []models.Genre, selected *models.Genre) []list.Item {
	all := models.AllGenres(genres)
	items := make([]list.Item, 0, len(genres)+1)
	items = append(items, genreItem{count: all.Count, selected: selected == nil})
	for i := range genres {
		g := genres[i]
		items = append(items, genreItem{genre: &g, count: g.Count, selected: models.SameFilter(&g, selected)})
	}
	return items
}

func movieItems(movies []models.Movie) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m}
	}
	return items
}
