package paging

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
)

// Factory creates one [Stream] per filter. Streams never share cache state.
type Factory struct {
	loader   Loader
	pageSize int
	logger   *log.Logger
}

// NewFactory creates a factory whose streams load pageSize items at a time.
func NewFactory(loader Loader, pageSize int, logger *log.Logger) *Factory {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Factory{loader: loader, pageSize: pageSize, logger: logger}
}

// Create returns a new, empty stream bound to filter.
func (f *Factory) Create(filter *models.Genre) *Stream {
	return NewStream(f.loader, f.pageSize, filter, WithLogger(f.logger))
}

// PageSize reports the size used for every stream.
func (f *Factory) PageSize() int {
	return f.pageSize
}
