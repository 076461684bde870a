package main

import (
	"context"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/urfave/cli/v3"
)

type genreOutput struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Genres prints the genre catalog, led by the synthetic "All" entry.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}

	genres, err := repo.Genres(ctx)
	if err != nil {
		return err
	}
	r.logger.Debug("fetched genre catalog", "count", len(genres))

	if cmd.Bool("json") {
		out := make([]genreOutput, 0, len(genres))
		for _, g := range genres {
			out = append(out, genreOutput{Name: g.Name, Count: g.Count})
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	all := models.AllGenres(genres)
	r.writePlainHeader("Genres")
	r.writePlain("%-24s %6d\n", all.Name, all.Count)
	for _, g := range genres {
		r.writePlain("%-24s %6d\n", g.Name, g.Count)
	}
	return nil
}
