package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/goccy/go-json"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// CatalogStore is the read side of the movie catalog. Implemented by [repositories.MovieRepository].
type CatalogStore interface {
	Page(ctx context.Context, offset, limit int, genre string) ([]models.MovieRecord, error)
	GenreCounts(ctx context.Context) ([]repositories.GenreCount, error)
}

// CatalogHandler serves the movies and genres endpoints under a path prefix.
//
//	GET {prefix}movies?from=&limit=&genre=  -> [MovieRecord, ...]
//	GET {prefix}genres                      -> [[name, count], ...]
type CatalogHandler struct {
	store  CatalogStore
	prefix string
	logger *log.Logger
}

// NewCatalogHandler creates a handler rooted at prefix, which must start and end with "/".
func NewCatalogHandler(store CatalogStore, prefix string, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, prefix: prefix, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *CatalogHandler) Routes() []string {
	return []string{h.prefix + "movies", h.prefix + "genres"}
}

// ServeHTTP dispatches on the request path.
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch r.URL.Path {
	case h.prefix + "movies":
		h.movies(w, r)
	case h.prefix + "genres":
		h.genres(w, r)
	default:
		writeError(w, http.StatusNotFound, "no route for "+r.URL.Path)
	}
}

func (h *CatalogHandler) movies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := intParam(q.Get("from"), 0)
	if err != nil || from < 0 {
		writeError(w, http.StatusBadRequest, "from must be a non-negative integer")
		return
	}
	limit, err := intParam(q.Get("limit"), defaultLimit)
	if err != nil || limit <= 0 || limit > maxLimit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxLimit))
		return
	}

	records, err := h.store.Page(r.Context(), from, limit, q.Get("genre"))
	if err != nil {
		h.logger.Error("failed to load movies", "from", from, "limit", limit, "genre", q.Get("genre"), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load movies")
		return
	}
	if records == nil {
		records = []models.MovieRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *CatalogHandler) genres(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.GenreCounts(r.Context())
	if err != nil {
		h.logger.Error("failed to load genres", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load genres")
		return
	}

	tuples := make([]models.GenreRecord, len(counts))
	for i, c := range counts {
		tuples[i] = models.GenreRecord{c.Name, c.Count}
	}
	writeJSON(w, http.StatusOK, tuples)
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// NewCatalogRouter wires the catalog handler behind the standard middleware stack:
// panic recovery, request logging, bearer auth and artificial latency, outermost first.
func NewCatalogRouter(store CatalogStore, prefix, token string, latency time.Duration, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger), BearerAuth(token), Latency(latency))
	router.Handler(NewCatalogHandler(store, prefix, logger))
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	return router
}
