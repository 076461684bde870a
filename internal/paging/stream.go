package paging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/failure"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidCursor is wrapped by the failure returned for a negative cursor.
var ErrInvalidCursor = errors.New("invalid cursor")

// LoadState is the status of one cursor slot in a [Stream].
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "not_loaded"
	}
}

// Slot is a loaded page with its cursor.
type Slot struct {
	Cursor int
	Page   models.Page
}

// Stream is a lazily loaded, page-keyed view of the collection for one filter.
//
// Pages that loaded successfully are kept for the stream's lifetime. Concurrent loads of the same cursor
// share one underlying request. A failed cursor keeps its failure until a later load of that cursor succeeds;
// other cached pages are unaffected.
type Stream struct {
	id       string
	loader   Loader
	pageSize int
	filter   *models.Genre
	initial  int
	base     *log.Logger
	logger   *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu       sync.Mutex
	pages    map[int]models.Page
	failures map[int]*failure.Failure
	inflight map[int]struct{}
}

// Option configures a [Stream].
type Option func(*Stream)

// WithLogger sets the stream's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Stream) {
		if l != nil {
			s.base = l
		}
	}
}

// WithInitialCursor sets the cursor loaded by [Stream.First]. Negative values are ignored.
func WithInitialCursor(cursor int) Option {
	return func(s *Stream) {
		if cursor >= 0 {
			s.initial = cursor
		}
	}
}

// NewStream creates an empty stream bound to filter. A nil filter means unfiltered.
func NewStream(loader Loader, pageSize int, filter *models.Genre, opts ...Option) *Stream {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if filter != nil {
		g := *filter
		filter = &g
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Stream{
		id:       shared.GenerateID(),
		loader:   loader,
		pageSize: pageSize,
		filter:   filter,
		base:     log.New(io.Discard),
		ctx:      ctx,
		cancel:   cancel,
		pages:    make(map[int]models.Page),
		failures: make(map[int]*failure.Failure),
		inflight: make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = shared.WithLogger(s.base, "stream", s.id[:8], "genre", models.FilterName(s.filter))
	return s
}

func (s *Stream) ID() string            { return s.id }
func (s *Stream) PageSize() int         { return s.pageSize }
func (s *Stream) InitialCursor() int    { return s.initial }
func (s *Stream) Filter() *models.Genre { return s.filter }

// Load returns the page at cursor: from cache when loaded, by joining an in-flight request when one exists,
// and otherwise by issuing a new load.
//
// The load itself runs under the stream's context, so a caller giving up through ctx does not cancel it for
// other callers and its result is still cached.
func (s *Stream) Load(ctx context.Context, cursor int) (models.Page, error) {
	if cursor < 0 {
		return models.Page{}, failure.NewUnknown(fmt.Errorf("%w: %d", ErrInvalidCursor, cursor))
	}
	if page, ok := s.Cached(cursor); ok {
		return page, nil
	}

	ch := s.group.DoChan(strconv.Itoa(cursor), func() (any, error) {
		page, err := s.fetch(cursor)
		return page, err
	})

	select {
	case <-ctx.Done():
		return models.Page{}, failure.Classify(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return models.Page{}, failure.Classify(res.Err)
		}
		return res.Val.(models.Page), nil
	}
}

func (s *Stream) fetch(cursor int) (models.Page, error) {
	s.mu.Lock()
	if page, ok := s.pages[cursor]; ok {
		s.mu.Unlock()
		return page, nil
	}
	s.inflight[cursor] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug("loading page", "cursor", cursor, "size", s.pageSize)
	page, err := s.loader.Load(s.ctx, cursor, s.pageSize, s.filter)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, cursor)

	if err != nil {
		f := failure.Classify(err)
		s.failures[cursor] = f
		s.logger.Warn("page load failed", "cursor", cursor, "kind", f.Kind, "err", f)
		return models.Page{}, f
	}

	delete(s.failures, cursor)
	s.pages[cursor] = page
	s.logger.Debug("page loaded", "cursor", cursor, "items", len(page.Items), "has_more", page.HasMore)
	return page, nil
}

// First loads the initial cursor.
func (s *Stream) First(ctx context.Context) (models.Page, error) {
	return s.Load(ctx, s.initial)
}

// Pending returns the next cursor to load when walking forward from the initial cursor, and false once the
// walk reaches a page without a successor.
func (s *Stream) Pending() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor := s.initial
	for {
		page, ok := s.pages[cursor]
		if !ok {
			return cursor, true
		}
		next, ok := NextCursor(cursor, s.pageSize, page)
		if !ok {
			return 0, false
		}
		cursor = next
	}
}

// LoadNext loads [Stream.Pending]. Once the stream is exhausted it returns an empty page with HasMore false.
func (s *Stream) LoadNext(ctx context.Context) (models.Page, error) {
	cursor, ok := s.Pending()
	if !ok {
		return models.Page{Items: []models.Movie{}}, nil
	}
	return s.Load(ctx, cursor)
}

// PendingPrevious returns the nearest unloaded cursor before the initial one, walking backwards.
func (s *Stream) PendingPrevious() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor := s.initial
	for {
		prev, ok := PrevCursor(cursor, s.pageSize)
		if !ok {
			return 0, false
		}
		if _, loaded := s.pages[prev]; !loaded {
			return prev, true
		}
		cursor = prev
	}
}

// LoadPrevious loads [Stream.PendingPrevious], returning an empty page when cursor 0 is already loaded.
func (s *Stream) LoadPrevious(ctx context.Context) (models.Page, error) {
	cursor, ok := s.PendingPrevious()
	if !ok {
		return models.Page{Items: []models.Movie{}}, nil
	}
	return s.Load(ctx, cursor)
}

// Exhausted reports whether every page up to the end of the collection has loaded.
func (s *Stream) Exhausted() bool {
	_, ok := s.Pending()
	return !ok
}

// Cached returns the page at cursor if it has loaded.
func (s *Stream) Cached(cursor int) (models.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[cursor]
	return page, ok
}

// LoadState reports the status of cursor. A loaded page wins over a stale failure or a concurrent reload.
func (s *Stream) LoadState(cursor int) LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[cursor]; ok {
		return Loaded
	}
	if _, ok := s.inflight[cursor]; ok {
		return Loading
	}
	if _, ok := s.failures[cursor]; ok {
		return Failed
	}
	return NotLoaded
}

// Failure returns the last failure recorded for cursor, or nil.
func (s *Stream) Failure(cursor int) *failure.Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[cursor]
}

// Pages returns the loaded pages ordered by cursor.
func (s *Stream) Pages() []Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slotsLocked()
}

func (s *Stream) slotsLocked() []Slot {
	slots := make([]Slot, 0, len(s.pages))
	for cursor, page := range s.pages {
		slots = append(slots, Slot{Cursor: cursor, Page: page})
	}
	slices.SortFunc(slots, func(a, b Slot) int { return a.Cursor - b.Cursor })
	return slots
}

// Items flattens the loaded pages in cursor order.
func (s *Stream) Items() []models.Movie {
	slots := s.Pages()
	n := 0
	for _, sl := range slots {
		n += len(sl.Page.Items)
	}
	items := make([]models.Movie, 0, n)
	for _, sl := range slots {
		items = append(items, sl.Page.Items...)
	}
	return items
}

// RefreshKey picks the cursor a restarted stream should begin at so the item at anchor stays in view.
//
// The page containing anchor (an index into [Stream.Items]) is located, clamping to the first or last page;
// the key is that page's previous cursor plus one page, or failing that its next cursor minus one page.
// It reports false when nothing has loaded or the page has neither neighbour.
func (s *Stream) RefreshKey(anchor int) (int, bool) {
	s.mu.Lock()
	slots := s.slotsLocked()
	s.mu.Unlock()

	if len(slots) == 0 {
		return 0, false
	}

	closest := slots[len(slots)-1]
	if anchor < 0 {
		closest = slots[0]
	} else {
		pos := 0
		for _, sl := range slots {
			if anchor < pos+len(sl.Page.Items) {
				closest = sl
				break
			}
			pos += len(sl.Page.Items)
		}
	}

	if prev, ok := PrevCursor(closest.Cursor, s.pageSize); ok {
		return prev + s.pageSize, true
	}
	if next, ok := NextCursor(closest.Cursor, s.pageSize, closest.Page); ok {
		return next - s.pageSize, true
	}
	return 0, false
}

// Restart builds a fresh stream for the same filter with an empty cache, starting at [Stream.RefreshKey].
// The receiver is left untouched.
func (s *Stream) Restart(anchor int) *Stream {
	key, ok := s.RefreshKey(anchor)
	if !ok {
		key = 0
	}
	return NewStream(s.loader, s.pageSize, s.filter, WithLogger(s.base), WithInitialCursor(key))
}

// Close cancels loads still running under the stream's context.
func (s *Stream) Close() {
	s.cancel()
}
