// Package memory keeps restrooms in process memory. Everything is lost on
// restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/samirrijal/hongnam/internal/core/domain"
)

// RestroomRepo implements ports.RestroomRepository over a slice kept
// newest-first.
type RestroomRepo struct {
	mu       sync.RWMutex
	items    []domain.Restroom
	revision atomic.Uint64
	epoch    string
}

// NewRestroomRepo creates a repository holding seed in the given order.
func NewRestroomRepo(seed []domain.Restroom) *RestroomRepo {
	items := make([]domain.Restroom, len(seed))
	copy(items, seed)
	for i := range items {
		items[i].TrustScore = domain.ClampTrust(items[i].TrustScore)
	}
	return &RestroomRepo{items: items, epoch: uuid.NewString()}
}

// List returns a copy of every restroom.
func (r *RestroomRepo) List(ctx context.Context) ([]domain.Restroom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Restroom, len(r.items))
	copy(out, r.items)
	return out, nil
}

// GetByID returns a copy of the restroom with the given id.
func (r *RestroomRepo) GetByID(ctx context.Context, id string) (*domain.Restroom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	item := r.items[i]
	return &item, nil
}

// Prepend inserts a restroom at the front of the list.
func (r *RestroomRepo) Prepend(ctx context.Context, item *domain.Restroom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(item.ID) >= 0 {
		return fmt.Errorf("restroom %s already exists", item.ID)
	}
	r.items = append([]domain.Restroom{*item}, r.items...)
	r.revision.Add(1)
	return nil
}

// Update applies fn to the stored restroom under the write lock. The trust
// score is clamped after fn runs.
func (r *RestroomRepo) Update(ctx context.Context, id string, fn func(*domain.Restroom)) (*domain.Restroom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	item := r.items[i]
	fn(&item)
	item.ID = r.items[i].ID
	item.TrustScore = domain.ClampTrust(item.TrustScore)
	r.items[i] = item
	r.revision.Add(1)
	return &item, nil
}

// Revision counts mutations since start.
func (r *RestroomRepo) Revision() uint64 {
	return r.revision.Load()
}

// Epoch identifies this repository instance. Revisions are only
// comparable within one epoch.
func (r *RestroomRepo) Epoch() string {
	return r.epoch
}

// Len returns the number of stored restrooms.
func (r *RestroomRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *RestroomRepo) indexOf(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}
