package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/paging"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/urfave/cli/v3"
)

type movieOutput struct {
	Title    string   `json:"title"`
	Year     string   `json:"year,omitempty"`
	Genres   []string `json:"genres"`
	Overview string   `json:"overview,omitempty"`
}

func toMovieOutput(movies []models.Movie) []movieOutput {
	out := make([]movieOutput, 0, len(movies))
	for _, m := range movies {
		out = append(out, movieOutput{Title: m.Title, Year: m.Year, Genres: m.Genres, Overview: m.Overview})
	}
	return out
}

func genreFilter(name string) *models.Genre {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, models.AllGenresName) {
		return nil
	}
	return &models.Genre{Name: name}
}

// MoviesList prints one window of the catalog, or walks every page with --all.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	filter := genreFilter(cmd.String("genre"))
	from := int(cmd.Int("from"))
	limit := int(cmd.Int("limit"))
	if limit <= 0 {
		limit = r.config.Paging.PageSize
	}
	if from < 0 {
		return fmt.Errorf("%w: --from must not be negative", shared.ErrInvalidFlag)
	}

	repo, err := r.repository()
	if err != nil {
		return err
	}

	var movies []models.Movie
	if cmd.Bool("all") {
		r.logger.Info("collecting every page", "genre", models.FilterName(filter), "page_size", limit)
		stream := paging.NewStream(paging.NewMovieLoader(repo), limit, filter,
			paging.WithLogger(r.logger), paging.WithInitialCursor(from))
		defer stream.Close()

		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := r.logProgress(progressCh)
		movies, err = tasks.CollectAll(ctx, progressCh, stream)
		close(progressCh)
		<-done
	} else {
		r.logger.Debug("fetching page", "genre", models.FilterName(filter), "from", from, "limit", limit)
		movies, err = repo.Movies(ctx, from, limit, models.FilterName(filter))
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(toMovieOutput(movies), cmd.Bool("pretty"))
	}

	title := "All movies"
	if filter != nil {
		title = "Movies: " + filter.Name
	}
	r.writePlainHeader(fmt.Sprintf("%s (%d)", title, len(movies)))
	for i, m := range movies {
		year := ""
		if m.Year != "" {
			year = " (" + m.Year + ")"
		}
		r.writePlain("%4d. %s%s\n", from+i+1, m.Title, year)
		if len(m.Genres) > 0 {
			r.writePlain("      %s\n", strings.Join(m.Genres, ", "))
		}
	}
	if len(movies) == 0 {
		r.writePlain("No movies found.\n")
	}
	return nil
}

// MoviesExport walks the listing to the end and writes it to a file, or one file per genre with --by-genre.
func (r *Runner) MoviesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, err := r.repository()
	if err != nil {
		return err
	}
	exporter := tasks.NewExporter(r.streamFactory(repo), repo, shared.WithLogger(r.logger, "component", "exporter"))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := r.printProgress(progressCh)

	if cmd.Bool("by-genre") {
		result, err := exporter.ExportByGenre(ctx, progressCh, tasks.ExportOpts{
			Format:     format,
			OutputDir:  cmd.String("dir"),
			NumWorkers: int(cmd.Int("workers")),
			IncludeAll: cmd.Bool("include-all"),
		})
		close(progressCh)
		<-done

		if result != nil {
			r.writeExportSummary(result)
		}
		return err
	}

	filter := genreFilter(cmd.String("genre"))
	res, err := exporter.Export(ctx, progressCh, filter, format, cmd.String("output"))
	close(progressCh)
	<-done
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainln("✓ Exported %d movies to %s", res.Count, res.Path)
	return nil
}

func (r *Runner) writeExportSummary(result *tasks.ExportResult) {
	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Output directory: %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	r.writePlain("Succeeded: %d, Failed: %d\n", result.Succeeded, result.Failed)

	if result.Failed > 0 {
		r.writePlain("\nFailed genres:\n")
		for _, res := range result.Results {
			if res.Error != "" {
				r.writePlain("  - %s: %s\n", res.Genre, res.Error)
			}
		}
	}
}

// printProgress writes progress updates to the output until progressCh is closed.
func (r *Runner) printProgress(progressCh <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchGenres:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.FetchPages:
				r.logger.Debug(update.Message, "step", update.Step)
			case tasks.WriteExport:
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			}
		}
	}()
	return done
}

// logProgress sends progress updates to the logger only, keeping stdout clean for the listing.
func (r *Runner) logProgress(progressCh <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()
	return done
}
