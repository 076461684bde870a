// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/marquee/internal/models"
)

// PageCall records one FetchPage invocation on a [MockFetcher].
type PageCall struct {
	Offset int
	Limit  int
	Genre  string
}

// MockFetcher is a test double for [services.CatalogFetcher].
//
// With no PageFn it serves windows of Movies, filtered by genre; with no GenresFn it returns Genres.
type MockFetcher struct {
	Movies   []models.MovieRecord
	Genres   []models.GenreRecord
	PageFn   func(ctx context.Context, offset, limit int, genre string) ([]models.MovieRecord, error)
	GenresFn func(ctx context.Context) ([]models.GenreRecord, error)

	mu         sync.Mutex
	pageCalls  []PageCall
	genreCalls int
}

func (m *MockFetcher) FetchPage(ctx context.Context, offset, limit int, genre string) ([]models.MovieRecord, error) {
	m.mu.Lock()
	m.pageCalls = append(m.pageCalls, PageCall{Offset: offset, Limit: limit, Genre: genre})
	m.mu.Unlock()

	if m.PageFn != nil {
		return m.PageFn(ctx, offset, limit, genre)
	}
	return Window(m.Movies, offset, limit, genre), nil
}

func (m *MockFetcher) FetchGenres(ctx context.Context) ([]models.GenreRecord, error) {
	m.mu.Lock()
	m.genreCalls++
	m.mu.Unlock()

	if m.GenresFn != nil {
		return m.GenresFn(ctx)
	}
	return m.Genres, nil
}

// PageCalls returns a copy of the recorded FetchPage calls.
func (m *MockFetcher) PageCalls() []PageCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PageCall(nil), m.pageCalls...)
}

// GenreCalls returns how many times FetchGenres ran.
func (m *MockFetcher) GenreCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.genreCalls
}

// Window slices records the way the catalog API does: filter by genre, then skip offset and take limit.
func Window(records []models.MovieRecord, offset, limit int, genre string) []models.MovieRecord {
	filtered := make([]models.MovieRecord, 0, len(records))
	for _, r := range records {
		if genre == "" || hasGenre(r, genre) {
			filtered = append(filtered, r)
		}
	}
	if offset >= len(filtered) {
		return []models.MovieRecord{}
	}
	end := min(offset+limit, len(filtered))
	return filtered[offset:end]
}

func hasGenre(r models.MovieRecord, genre string) bool {
	for _, g := range r.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// MovieRecords builds n records titled "<prefix> NNN" tagged with genres, already in normalized order.
func MovieRecords(n int, prefix string, genres ...string) []models.MovieRecord {
	records := make([]models.MovieRecord, n)
	for i := range records {
		records[i] = models.MovieRecord{
			ID:          fmt.Sprintf("%s-%03d", prefix, i),
			Title:       fmt.Sprintf("%s %03d", prefix, i),
			ReleaseDate: "2001",
			Overview:    "overview",
			Genres:      append([]string{}, genres...),
		}
	}
	return records
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to path, failing the test on error.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
