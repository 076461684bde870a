// package models defines the data model for the movie catalog client
package models

import (
	"time"
)

// Persisted is a row owned by the fixture backend's database.
type Persisted interface {
	ID() string
	Sequence() int // insertion order, the sort key of every listing
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

var _ Persisted = (*PersistedMovie)(nil)
