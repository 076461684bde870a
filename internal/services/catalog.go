// Catalog API implementation of [CatalogFetcher]
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultCatalogURL = "http://localhost:8080/api/"
	defaultTimeout    = 10 * time.Second
	userAgent         = "marquee/1.0"
)

// CatalogFetcher is the transport boundary of the movie catalog.
type CatalogFetcher interface {
	// FetchPage returns up to limit raw movies starting at offset, filtered by genre when non-empty.
	FetchPage(ctx context.Context, offset, limit int, genre string) ([]models.MovieRecord, error)

	// FetchGenres returns the raw `[name, count]` genre tuples.
	FetchGenres(ctx context.Context) ([]models.GenreRecord, error)
}

// CatalogOptions configures a [CatalogService].
type CatalogOptions struct {
	BaseURL           string
	Token             string        // optional bearer token
	Timeout           time.Duration // per request, including the body read
	RequestsPerSecond float64       // <= 0 disables limiting
	LogBodies         bool
	Logger            *log.Logger
	Transport         http.RoundTripper // defaults to [http.DefaultTransport]
}

// CatalogService talks to the movie catalog HTTP API.
type CatalogService struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// StatusError is returned when a response was received but could not be used:
// a non-2xx status, or a 2xx status with an empty or undecodable body.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog API error: status %d: %s", e.Code, e.Message)
}

// HTTPStatus exposes the status so the error classifies as a server failure.
func (e *StatusError) HTTPStatus() (int, string) { return e.Code, e.Message }

// NewCatalogService creates a catalog client. The base URL always ends with a slash so relative
// endpoint paths resolve beneath it.
func NewCatalogService(opts CatalogOptions) (*CatalogService, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = defaultCatalogURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", opts.BaseURL)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	transport = &loggingTransport{next: transport, logger: logger, bodies: opts.LogBodies}

	client := &http.Client{Transport: transport, Timeout: timeout}
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"}))
		client.Timeout = timeout
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &CatalogService{
		baseURL:    base,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}, nil
}

// FetchPage performs GET {base}movies?from=&limit=&genre=.
func (s *CatalogService) FetchPage(ctx context.Context, offset, limit int, genre string) ([]models.MovieRecord, error) {
	q := url.Values{}
	q.Set("from", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	if genre != "" {
		q.Set("genre", genre)
	}

	var records []models.MovieRecord
	if err := s.get(ctx, "movies", q, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchGenres performs GET {base}genres.
func (s *CatalogService) FetchGenres(ctx context.Context) ([]models.GenreRecord, error) {
	var records []models.GenreRecord
	if err := s.get(ctx, "genres", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// get issues a GET for endpoint and decodes a JSON body into dst.
//
// Transport errors are returned as-is (they classify as network failures); anything wrong with a
// received response is a [*StatusError].
func (s *CatalogService) get(ctx context.Context, endpoint string, query url.Values, dst any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := s.baseURL.ResolveReference(&url.URL{Path: endpoint})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &url.Error{Op: "Read", URL: u.String(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &StatusError{Code: resp.StatusCode, Message: "empty response body"}
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return &StatusError{Code: resp.StatusCode, Message: fmt.Sprintf("malformed response body: %v", err)}
	}
	return nil
}

// loggingTransport logs each exchange at debug level, including bodies when enabled.
type loggingTransport struct {
	next   http.RoundTripper
	logger *log.Logger
	bodies bool
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logger.Debug("--> request", "method", req.Method, "url", req.URL.String())

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.Debug("<-- failed", "url", req.URL.String(), "duration", time.Since(start), "err", err)
		return nil, err
	}

	if !t.bodies {
		t.logger.Debug("<-- response", "status", resp.StatusCode, "url", req.URL.String(), "duration", time.Since(start))
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	t.logger.Debug("<-- response", "status", resp.StatusCode, "url", req.URL.String(), "duration", time.Since(start), "body", string(body))
	return resp, nil
}
