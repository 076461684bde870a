// package tasks implements long-running catalog operations: walking a stream to the end and bulk exports.
package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/catalog"
	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/paging"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
)

// StreamFactory creates a fresh stream per filter. Implemented by [paging.Factory].
type StreamFactory interface {
	Create(filter *models.Genre) *paging.Stream
}

// CollectAll walks stream forward with [paging.Stream.LoadNext] until it is exhausted and returns every
// loaded movie in order. The first page failure aborts the walk.
func CollectAll(ctx context.Context, progress chan<- ProgressUpdate, stream *paging.Stream) ([]models.Movie, error) {
	pages := 0
	for !stream.Exhausted() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, err := stream.LoadNext(ctx); err != nil {
			return nil, err
		}
		pages++
		sendProgress(progress, pageLoadedUpdate(stream.Filter(), pages, len(stream.Items())))
	}
	return stream.Items(), nil
}

// ExportOpts configures [Exporter.ExportByGenre].
type ExportOpts struct {
	Format     formatter.Format
	OutputDir  string // Base output directory (default: marquee_export_{epoch})
	NumWorkers int    // Concurrent genre exports (default: 4, max: 10)
	IncludeAll bool   // Also export the unfiltered listing
}

// GenreExportResult is the outcome of exporting one genre.
type GenreExportResult struct {
	Genre string `json:"genre"`
	Path  string `json:"path,omitempty"`
	Count int    `json:"count"`
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// ExportResult summarizes a bulk export.
type ExportResult struct {
	OutputDirectory string              `json:"output_directory"`
	ManifestPath    string              `json:"-"`
	Succeeded       int                 `json:"succeeded"`
	Failed          int                 `json:"failed"`
	Results         []GenreExportResult `json:"results"`
}

// Exporter runs exports over streams created by a factory.
type Exporter struct {
	factory StreamFactory
	genres  catalog.GenreSource
	logger  *log.Logger
}

// NewExporter creates an Exporter. A nil logger discards output.
func NewExporter(factory StreamFactory, genres catalog.GenreSource, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{factory: factory, genres: genres, logger: logger}
}

// Export collects every movie for filter and writes them to path in format.
func (e *Exporter) Export(ctx context.Context, progress chan<- ProgressUpdate, filter *models.Genre, format formatter.Format, path string) (GenreExportResult, error) {
	res := GenreExportResult{Genre: label(filter)}

	stream := e.factory.Create(filter)
	defer stream.Close()

	movies, err := CollectAll(ctx, progress, stream)
	if err != nil {
		res.Err = err
		return res, err
	}
	res.Count = len(movies)

	written, err := formatter.WriteExport(&formatter.Export{Filter: filter, Movies: movies}, format, path)
	if err != nil {
		res.Err = err
		return res, err
	}
	res.Path = written
	return res, nil
}

// ExportByGenre writes one file per genre concurrently, plus the unfiltered listing when requested,
// and a manifest summarizing the run.
//
// A genre that fails is recorded in the result and does not stop the others. Only a genre catalog
// failure, cancellation, or a manifest write error is returned as an error.
func (e *Exporter) ExportByGenre(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("marquee_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.Format == "" {
		opts.Format = formatter.JSON
	}

	sendProgress(progress, fetchingGenresUpdate())
	genres, err := e.genres.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}
	sendProgress(progress, foundGenresUpdate(genres))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filters := make([]*models.Genre, 0, len(genres)+1)
	if opts.IncludeAll {
		filters = append(filters, nil)
	}
	for i := range genres {
		filters = append(filters, &genres[i])
	}

	result := &ExportResult{
		OutputDirectory: opts.OutputDir,
		Results:         make([]GenreExportResult, len(filters)),
	}

	var (
		mu        sync.Mutex
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.NumWorkers)
	for i, filter := range filters {
		g.Go(func() error {
			path := filepath.Join(opts.OutputDir, formatter.FileName(filter, opts.Format))
			res, err := e.Export(gctx, progress, filter, opts.Format, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				res.Error = err.Error()
				e.logger.Warn("genre export failed", "genre", res.Genre, "error", err)
			}

			mu.Lock()
			defer mu.Unlock()
			result.Results[i] = res
			completed++
			if err != nil {
				result.Failed++
				sendProgress(progress, exportFailedUpdate(completed, len(filters), res))
			} else {
				result.Succeeded++
				sendProgress(progress, exportCompletedUpdate(completed, len(filters), res))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("export cancelled: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if result.Failed > 0 && result.Succeeded == 0 {
		return result, fmt.Errorf("%w: every genre export failed", shared.ErrServiceUnavailable)
	}
	return result, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
