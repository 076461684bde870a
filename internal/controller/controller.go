package controller

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/catalog"
	"github.com/desertthunder/marquee/internal/failure"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/paging"
	"github.com/desertthunder/marquee/internal/pubsub"
	"github.com/desertthunder/marquee/internal/result"
	"github.com/desertthunder/marquee/internal/shared"
)

const inboxSize = 64

// StreamFactory creates a fresh paged stream for a filter. Implemented by [paging.Factory].
type StreamFactory interface {
	Create(filter *models.Genre) *paging.Stream
}

// Controller owns the UI [State]. A single goroutine applies intents and async completions in arrival order.
type Controller struct {
	factory StreamFactory
	genres  catalog.GenreSource
	logger  *log.Logger

	states  *pubsub.Latest[State]
	effects *pubsub.Multicast[Effect]
	inbox   chan any

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	// owned by the loop goroutine
	state      State
	stream     *paging.Stream
	pending    *models.Genre
	generation uint64
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// firstPageDone carries the first-page result of a stream created for a generation.
type firstPageDone struct {
	generation uint64
	stream     *paging.Stream
	filter     *models.Genre
	page       result.Result[models.Page]
}

// catalogDone carries a genre catalog fetch result.
type catalogDone struct {
	genres result.Result[[]models.Genre]
}

// New creates a controller in [Loading] and starts loading the unfiltered stream's first page.
func New(factory StreamFactory, genres catalog.GenreSource, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		factory: factory,
		genres:  genres,
		logger:  log.New(io.Discard),
		states:  pubsub.NewLatest[State](Loading{}),
		effects: pubsub.NewMulticast[Effect](pubsub.DefaultBuffer),
		inbox:   make(chan any, inboxSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		state:   Loading{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = shared.WithLogger(c.logger, "component", "controller")

	c.stream = c.factory.Create(nil)
	c.awaitFirstPage(c.generation, c.stream, nil)

	go c.run()
	return c
}

// Dispatch queues an intent. It returns [shared.ErrClosed] once the controller is closed.
func (c *Controller) Dispatch(intent Intent) error {
	if intent == nil {
		return fmt.Errorf("%w: nil intent", shared.ErrInvalidArgument)
	}
	select {
	case <-c.ctx.Done():
		return shared.ErrClosed
	default:
	}
	select {
	case c.inbox <- intent:
		return nil
	case <-c.ctx.Done():
		return shared.ErrClosed
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.states.Value()
}

// States subscribes to state changes. The channel yields the current state first and conflates updates.
func (c *Controller) States() (<-chan State, func()) {
	return c.states.Subscribe()
}

// Effects subscribes to one-off effects published after the call. There is no replay.
func (c *Controller) Effects() (<-chan Effect, func()) {
	return c.effects.Subscribe()
}

// Close stops the loop, cancels outstanding fetches and closes every subscription.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		<-c.done
		if c.stream != nil {
			c.stream.Close()
		}
		c.states.Close()
		c.effects.Close()
	})
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-c.inbox:
			c.handle(msg)
		}
	}
}

func (c *Controller) handle(msg any) {
	switch m := msg.(type) {
	case RequestCatalog:
		c.requestCatalog()
	case SelectFilter:
		c.selectFilter(m.Genre)
	case ItemActivated:
		c.effects.Publish(NavigateToDetails{Movie: m.Movie})
	case firstPageDone:
		c.onFirstPage(m)
	case catalogDone:
		c.onCatalog(m)
	default:
		c.logger.Warn("ignoring unknown message", "type", fmt.Sprintf("%T", msg))
	}
}

func (c *Controller) setState(s State) {
	c.state = s
	c.states.Publish(s)
}

func (c *Controller) requestCatalog() {
	c.logger.Debug("fetching genre catalog")
	go func() {
		genres, err := c.genres.Genres(c.ctx)
		c.post(catalogDone{genres: result.FromPair(genres, err)})
	}()
}

func (c *Controller) onCatalog(m catalogDone) {
	if !m.genres.IsOk() {
		f := m.genres.Failure()
		c.logger.Error("genre catalog failed", "kind", f.Kind, "err", f)
		c.setState(Error{Failure: f})
		return
	}

	genres := m.genres.Value()
	switch s := c.state.(type) {
	case Success:
		c.setState(s.withGenres(genres))
	case Loading:
		c.setState(Success{Stream: c.stream, Genres: genres, Selected: c.pending})
	case Error:
		c.logger.Debug("dropping genre catalog while in error state", "count", len(genres))
	}
}

func (c *Controller) selectFilter(filter *models.Genre) {
	if filter != nil {
		g := *filter
		filter = &g
	}
	c.pending = filter
	c.generation++
	c.logger.Debug("selecting filter", "genre", models.FilterName(filter), "generation", c.generation)

	if s, ok := c.state.(Success); ok {
		c.setState(s.withBusy(filter))
	}

	stream := c.factory.Create(filter)
	c.awaitFirstPage(c.generation, stream, filter)
}

func (c *Controller) awaitFirstPage(generation uint64, stream *paging.Stream, filter *models.Genre) {
	go func() {
		page, err := stream.First(c.ctx)
		c.post(firstPageDone{
			generation: generation,
			stream:     stream,
			filter:     filter,
			page:       result.FromPair(page, err),
		})
	}()
}

func (c *Controller) onFirstPage(m firstPageDone) {
	if m.generation != c.generation {
		c.logger.Debug("discarding superseded stream", "generation", m.generation, "current", c.generation)
		return
	}

	if !m.page.IsOk() {
		f := m.page.Failure()
		c.logger.Error("first page failed", "genre", models.FilterName(m.filter), "kind", f.Kind, "err", f)
		c.setState(Error{Failure: f})
		return
	}

	var genres []models.Genre
	if s, ok := c.state.(Success); ok {
		genres = s.Genres
	}
	if genres == nil {
		genres = []models.Genre{}
	}

	c.stream = m.stream
	c.setState(Success{Stream: m.stream, Genres: genres, Selected: m.filter})
}

// post delivers an async completion to the loop unless the controller has closed.
func (c *Controller) post(msg any) {
	select {
	case c.inbox <- msg:
	case <-c.ctx.Done():
	}
}

// Failure returns the failure carried by s, or nil when s is not an [Error].
func Failure(s State) *failure.Failure {
	if e, ok := s.(Error); ok {
		return e.Failure
	}
	return nil
}
