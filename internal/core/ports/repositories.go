package ports

import (
	"context"

	"github.com/samirrijal/hongnam/internal/core/domain"
)

// RestroomRepository holds the known restrooms.
//
// List returns records newest-first. Update applies fn to the stored record
// under the repository's lock so that the read-modify-write is atomic; it
// returns domain.ErrNotFound for unknown ids. Revision counts mutations and
// restarts with each instance; Epoch is unique per instance, so the pair
// identifies one store state across processes.
type RestroomRepository interface {
	List(ctx context.Context) ([]domain.Restroom, error)
	GetByID(ctx context.Context, id string) (*domain.Restroom, error)
	Prepend(ctx context.Context, r *domain.Restroom) error
	Update(ctx context.Context, id string, fn func(*domain.Restroom)) (*domain.Restroom, error)
	Revision() uint64
	Epoch() string
}
