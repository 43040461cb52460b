package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samirrijal/hongnam/internal/adapters/memory"
	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/core/usecases"
)

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	checkIns  []domain.CheckInReport
	added     []domain.Restroom
	reports   []domain.ProblemReport
	publishFn func() error
}

func (m *mockPublisher) PublishCheckIn(ctx context.Context, report *domain.CheckInReport) error {
	m.mu.Lock()
	m.checkIns = append(m.checkIns, *report)
	m.mu.Unlock()
	if m.publishFn != nil {
		return m.publishFn()
	}
	return nil
}

func (m *mockPublisher) PublishReport(ctx context.Context, report *domain.ProblemReport) error {
	m.mu.Lock()
	m.reports = append(m.reports, *report)
	m.mu.Unlock()
	if m.publishFn != nil {
		return m.publishFn()
	}
	return nil
}

func (m *mockPublisher) PublishRestroomAdded(ctx context.Context, r *domain.Restroom) error {
	m.mu.Lock()
	m.added = append(m.added, *r)
	m.mu.Unlock()
	if m.publishFn != nil {
		return m.publishFn()
	}
	return nil
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	hits int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if v, ok := m.data[key]; ok {
		m.hits++
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock LocationProvider ---

type mockLocation struct {
	permission domain.Permission
	position   domain.GeoPoint
	err        error
	// release, when set, blocks CurrentPosition until it is closed.
	release chan struct{}
	started chan struct{}
}

func (m *mockLocation) RequestPermission(ctx context.Context) (domain.Permission, error) {
	return m.permission, nil
}

func (m *mockLocation) CurrentPosition(ctx context.Context) (domain.GeoPoint, error) {
	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}
	return m.position, m.err
}

// --- Mock PhotoPicker ---

type mockPhotos struct {
	permission domain.Permission
	result     domain.PickResult
	picks      int
}

func (m *mockPhotos) RequestPermission(ctx context.Context) (domain.Permission, error) {
	return m.permission, nil
}

func (m *mockPhotos) PickImage(ctx context.Context) (domain.PickResult, error) {
	m.picks++
	return m.result, nil
}

// --- Mock MapNavigator ---

type mockNavigator struct {
	opened []string
	to     domain.GeoPoint
}

func (m *mockNavigator) Open(ctx context.Context, to domain.GeoPoint, name string) {
	m.opened = append(m.opened, name)
	m.to = to
}

// --- Helpers ---

// seed is A(free, 24h, wheelchair, trust 92) followed by B(unknown, trust 65).
func seed() []domain.Restroom {
	return memory.DemoSeed(time.Now())
}

func newStore(rs []domain.Restroom) (*usecases.RestroomService, *memory.RestroomRepo) {
	repo := memory.NewRestroomRepo(rs)
	return usecases.NewRestroomService(repo, nil, nil), repo
}

func approxNow(t time.Time) bool {
	d := time.Since(t)
	return d >= 0 && d < 5*time.Second
}
