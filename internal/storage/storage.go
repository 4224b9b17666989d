// Package storage defines the persistence contract the tracker works
// against. Backends are interchangeable and picked at composition time.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/laddr/internal/domain"
)

// ErrNotFound is returned when no ladder exists under the given id.
var ErrNotFound = errors.New("ladder not found")

// Ladders is the four-operation document contract keyed by ladder id.
// Implementations serialize the ladder (steps included) as JSON.
type Ladders interface {
	Get(ctx context.Context, id string) (*domain.Ladder, error)
	List(ctx context.Context) ([]*domain.Ladder, error)
	Create(ctx context.Context, ladder *domain.Ladder) error
	Update(ctx context.Context, ladder *domain.Ladder) error
	Delete(ctx context.Context, id string) error
}
