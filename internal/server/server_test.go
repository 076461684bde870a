package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/goccy/go-json"
)

type fakeStore struct {
	records []models.MovieRecord
	genres  []repositories.GenreCount
	err     error
	calls   []string
}

func (s *fakeStore) Page(_ context.Context, offset, limit int, genre string) ([]models.MovieRecord, error) {
	s.calls = append(s.calls, genre)
	if s.err != nil {
		return nil, s.err
	}
	var matched []models.MovieRecord
	for _, r := range s.records {
		if genre == "" {
			matched = append(matched, r)
			continue
		}
		for _, g := range r.Genres {
			if g == genre {
				matched = append(matched, r)
				break
			}
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	return matched[offset:min(offset+limit, len(matched))], nil
}

func (s *fakeStore) GenreCounts(context.Context) ([]repositories.GenreCount, error) {
	return s.genres, s.err
}

func newStore() *fakeStore {
	return &fakeStore{
		records: []models.MovieRecord{
			{ID: "1", Title: "Alien", Genres: []string{"Horror"}},
			{ID: "2", Title: "Brazil", Genres: []string{"Comedy"}},
			{ID: "3", Title: "Clue", Genres: []string{"Comedy"}},
		},
		genres: []repositories.GenreCount{{Name: "Comedy", Count: 2}, {Name: "Horror", Count: 1}},
	}
}

func discard() *log.Logger {
	return log.New(&bytes.Buffer{})
}

func get(t *testing.T, h http.Handler, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCatalogHandler(t *testing.T) {
	t.Run("Movies", func(t *testing.T) {
		tc := []struct {
			name    string
			target  string
			status  int
			wantIDs []string
		}{
			{name: "defaults", target: "/api/movies", status: 200, wantIDs: []string{"1", "2", "3"}},
			{name: "offset and limit", target: "/api/movies?from=1&limit=1", status: 200, wantIDs: []string{"2"}},
			{name: "genre filter", target: "/api/movies?genre=Comedy", status: 200, wantIDs: []string{"2", "3"}},
			{name: "past the end is empty", target: "/api/movies?from=10", status: 200, wantIDs: []string{}},
			{name: "negative from", target: "/api/movies?from=-1", status: 400},
			{name: "non numeric limit", target: "/api/movies?limit=ten", status: 400},
			{name: "limit too large", target: "/api/movies?limit=1000", status: 400},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				h := NewCatalogHandler(newStore(), "/api/", discard())
				rec := get(t, h, tt.target)

				if rec.Code != tt.status {
					t.Fatalf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
				}
				if tt.status != 200 {
					return
				}

				var records []models.MovieRecord
				if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if records == nil {
					t.Fatal("expected a JSON array, got null")
				}
				ids := make([]string, len(records))
				for i, r := range records {
					ids[i] = r.ID
				}
				if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") {
					t.Errorf("expected ids %v, got %v", tt.wantIDs, ids)
				}
			})
		}
	})

	t.Run("Genres As Tuples", func(t *testing.T) {
		h := NewCatalogHandler(newStore(), "/api/", discard())
		rec := get(t, h, "/api/genres")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `[["Comedy",2],["Horror",1]]` {
			t.Errorf("unexpected body %s", got)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
	})

	t.Run("Store Failure", func(t *testing.T) {
		store := newStore()
		store.err = errors.New("disk on fire")
		h := NewCatalogHandler(store, "/api/", discard())

		for _, target := range []string{"/api/movies", "/api/genres"} {
			rec := get(t, h, target)
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("%s: expected 500, got %d", target, rec.Code)
			}
			if strings.Contains(rec.Body.String(), "disk on fire") {
				t.Errorf("%s: internal error leaked to client", target)
			}
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		h := NewCatalogHandler(newStore(), "/api/", discard())
		req := httptest.NewRequest(http.MethodPost, "/api/movies", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("BearerAuth", func(t *testing.T) {
		h := BearerAuth("s3cret")(ok)

		if rec := get(t, h, "/"); rec.Code != http.StatusUnauthorized {
			t.Errorf("missing header: expected 401, got %d", rec.Code)
		}
		if rec := get(t, h, "/", "Authorization", "Bearer wrong"); rec.Code != http.StatusUnauthorized {
			t.Errorf("wrong token: expected 401, got %d", rec.Code)
		}
		if rec := get(t, h, "/", "Authorization", "Bearer s3cret"); rec.Code != http.StatusTeapot {
			t.Errorf("valid token: expected pass-through, got %d", rec.Code)
		}
	})

	t.Run("BearerAuth Disabled", func(t *testing.T) {
		if rec := get(t, BearerAuth("")(ok), "/"); rec.Code != http.StatusTeapot {
			t.Errorf("expected pass-through, got %d", rec.Code)
		}
	})

	t.Run("Latency", func(t *testing.T) {
		start := time.Now()
		rec := get(t, Latency(30*time.Millisecond)(ok), "/")
		if rec.Code != http.StatusTeapot {
			t.Errorf("expected pass-through, got %d", rec.Code)
		}
		if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
			t.Errorf("expected at least 30ms delay, got %v", elapsed)
		}
	})

	t.Run("Latency Abandoned Request", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		Latency(time.Hour)(ok).ServeHTTP(rec, req)

		if rec.Code == http.StatusTeapot {
			t.Error("handler should not run after the client left")
		}
	})

	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		get(t, Logging(log.New(&buf))(ok), "/api/movies?from=10")

		out := buf.String()
		for _, want := range []string{"path=/api/movies", "status=418", "from=10"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in log line %q", want, out)
			}
		}
	})

	t.Run("Recover", func(t *testing.T) {
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
		rec := get(t, Recover(discard())(boom), "/")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("outer"), mark("inner"))
		router.Handle(http.MethodGet, "/x", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))
		get(t, router, "/x")

		if strings.Join(order, ",") != "outer,inner,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Unknown Route", func(t *testing.T) {
		rec := get(t, NewBasicRouter(), "/nope")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Method Filter", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/x", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		req := httptest.NewRequest(http.MethodDelete, "/x", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Catalog Router Requires Token", func(t *testing.T) {
		router := NewCatalogRouter(newStore(), "/api/", "tok", 0, discard())

		if rec := get(t, router, "/api/genres"); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if rec := get(t, router, "/api/genres", "Authorization", "Bearer tok"); rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}

func TestServer(t *testing.T) {
	t.Run("Serve Until Cancelled", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}

		router := NewCatalogRouter(newStore(), "/api/", "", 0, discard())
		srv := NewServer(ln.Addr().String(), router, discard())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Serve(ctx, ln) }()

		resp, err := http.Get("http://" + ln.Addr().String() + "/api/genres")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})
}
