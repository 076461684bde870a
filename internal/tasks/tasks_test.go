package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/marquee/internal/catalog"
	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/paging"
	tu "github.com/desertthunder/marquee/internal/testing"
	"github.com/goccy/go-json"
)

func newPipeline(fetcher *tu.MockFetcher, pageSize int) (*paging.Factory, *catalog.Repository) {
	repo := catalog.NewRepository(fetcher, nil)
	return paging.NewFactory(paging.NewMovieLoader(repo), pageSize, nil), repo
}

func catalogFixture() *tu.MockFetcher {
	movies := append(tu.MovieRecords(7, "Drama", "Drama"), tu.MovieRecords(3, "Horror", "Horror")...)
	return &tu.MockFetcher{
		Movies: movies,
		Genres: []models.GenreRecord{{"Drama", 7.0}, {"Horror", 3.0}},
	}
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestCollectAll(t *testing.T) {
	t.Run("Walks To The Short Page", func(t *testing.T) {
		fetcher := catalogFixture()
		factory, _ := newPipeline(fetcher, 3)
		progress := make(chan ProgressUpdate, 16)

		movies, err := CollectAll(context.Background(), progress, factory.Create(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(movies) != 10 {
			t.Fatalf("expected 10 movies, got %d", len(movies))
		}

		calls := fetcher.PageCalls()
		if len(calls) != 4 {
			t.Errorf("expected 4 page loads (3+3+3+1), got %d", len(calls))
		}
		for i, c := range calls {
			if c.Offset != i*3 || c.Limit != 3 {
				t.Errorf("call %d: expected offset %d limit 3, got %+v", i, i*3, c)
			}
		}

		updates := drain(progress)
		if len(updates) != 4 {
			t.Errorf("expected one progress update per page, got %d", len(updates))
		}
		for _, u := range updates {
			if u.Phase != FetchPages {
				t.Errorf("unexpected phase %s", u.Phase)
			}
		}
	})

	t.Run("Exact Multiple Needs An Empty Page", func(t *testing.T) {
		fetcher := &tu.MockFetcher{Movies: tu.MovieRecords(6, "M")}
		factory, _ := newPipeline(fetcher, 3)

		movies, err := CollectAll(context.Background(), nil, factory.Create(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(movies) != 6 {
			t.Errorf("expected 6 movies, got %d", len(movies))
		}
		if n := len(fetcher.PageCalls()); n != 3 {
			t.Errorf("expected a trailing empty page load, got %d calls", n)
		}
	})

	t.Run("Filtered", func(t *testing.T) {
		factory, _ := newPipeline(catalogFixture(), 2)

		movies, err := CollectAll(context.Background(), nil, factory.Create(&models.Genre{Name: "Horror", Count: 3}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(movies) != 3 {
			t.Fatalf("expected 3 horror movies, got %d", len(movies))
		}
		for _, m := range movies {
			if !strings.HasPrefix(m.Title, "Horror") {
				t.Errorf("unexpected movie %s", m.Title)
			}
		}
	})

	t.Run("Page Failure Aborts", func(t *testing.T) {
		fetcher := catalogFixture()
		fetcher.PageFn = func(_ context.Context, offset, limit int, genre string) ([]models.MovieRecord, error) {
			if offset > 0 {
				return nil, errors.New("boom")
			}
			return tu.Window(fetcher.Movies, offset, limit, genre), nil
		}
		factory, _ := newPipeline(fetcher, 3)

		if _, err := CollectAll(context.Background(), nil, factory.Create(nil)); err == nil {
			t.Fatal("expected error from second page")
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		factory, _ := newPipeline(catalogFixture(), 3)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := CollectAll(ctx, nil, factory.Create(nil)); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestExporter(t *testing.T) {
	t.Run("Export", func(t *testing.T) {
		factory, repo := newPipeline(catalogFixture(), 4)
		exporter := NewExporter(factory, repo, nil)
		path := filepath.Join(t.TempDir(), "all.txt")

		res, err := exporter.Export(context.Background(), nil, nil, formatter.Text, path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Count != 10 || res.Path != path || res.Genre != models.AllGenresName {
			t.Errorf("unexpected result %+v", res)
		}

		data := tu.MustReadFile(t, path)
		if !strings.Contains(data, "Movies: 10") {
			t.Errorf("unexpected export content:\n%s", data)
		}
	})

	t.Run("ExportByGenre", func(t *testing.T) {
		factory, repo := newPipeline(catalogFixture(), 2)
		exporter := NewExporter(factory, repo, nil)
		dir := t.TempDir()
		progress := make(chan ProgressUpdate, 64)

		result, err := exporter.ExportByGenre(context.Background(), progress, ExportOpts{
			Format:     formatter.CSV,
			OutputDir:  dir,
			NumWorkers: 2,
			IncludeAll: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Succeeded != 3 || result.Failed != 0 {
			t.Errorf("expected 3 successes, got %+v", result)
		}

		want := map[string]int{models.AllGenresName: 10, "Drama": 7, "Horror": 3}
		for _, r := range result.Results {
			if r.Count != want[r.Genre] {
				t.Errorf("%s: expected %d movies, got %d", r.Genre, want[r.Genre], r.Count)
			}
			tu.AssertFileExists(t, r.Path)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "movies_drama.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "movies.csv"))

		var manifest ExportResult
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if len(manifest.Results) != 3 {
			t.Errorf("expected 3 manifest entries, got %d", len(manifest.Results))
		}

		var phases []Phase
		for _, u := range drain(progress) {
			phases = append(phases, u.Phase)
		}
		if len(phases) == 0 || phases[0] != FetchGenres {
			t.Errorf("expected genre fetch to be reported first, got %v", phases)
		}
	})

	t.Run("ExportByGenre Partial Failure", func(t *testing.T) {
		fetcher := catalogFixture()
		fetcher.PageFn = func(_ context.Context, offset, limit int, genre string) ([]models.MovieRecord, error) {
			if genre == "Horror" {
				return nil, errors.New("horror is down")
			}
			return tu.Window(fetcher.Movies, offset, limit, genre), nil
		}
		factory, repo := newPipeline(fetcher, 5)
		exporter := NewExporter(factory, repo, nil)

		result, err := exporter.ExportByGenre(context.Background(), nil, ExportOpts{
			Format:    formatter.JSON,
			OutputDir: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("partial failure should not be an error: %v", err)
		}
		if result.Succeeded != 1 || result.Failed != 1 {
			t.Errorf("expected 1 success and 1 failure, got %+v", result)
		}
		for _, r := range result.Results {
			if r.Genre == "Horror" && r.Error == "" {
				t.Error("expected failure message recorded for Horror")
			}
		}
	})

	t.Run("ExportByGenre Catalog Failure", func(t *testing.T) {
		fetcher := catalogFixture()
		fetcher.GenresFn = func(context.Context) ([]models.GenreRecord, error) {
			return nil, errors.New("no genres")
		}
		factory, repo := newPipeline(fetcher, 5)
		dir := filepath.Join(t.TempDir(), "out")

		if _, err := NewExporter(factory, repo, nil).ExportByGenre(context.Background(), nil, ExportOpts{OutputDir: dir}); err == nil {
			t.Fatal("expected error")
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("output directory should not be created when the catalog fails")
		}
	})
}

func TestSendProgress(t *testing.T) {
	t.Run("Nil Channel", func(t *testing.T) {
		sendProgress(nil, fetchingGenresUpdate())
	})

	t.Run("Full Channel Does Not Block", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		sendProgress(ch, fetchingGenresUpdate())
		sendProgress(ch, fetchingGenresUpdate())
		if len(ch) != 1 {
			t.Errorf("expected 1 buffered update, got %d", len(ch))
		}
	})
}

func TestPhaseString(t *testing.T) {
	tc := map[Phase]string{
		FetchGenres: "fetch_genres",
		FetchPages:  "fetch_pages",
		WriteExport: "write_export",
		Phase(99):   "",
	}
	for p, want := range tc {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
