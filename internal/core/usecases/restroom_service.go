package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/core/filter"
	"github.com/samirrijal/hongnam/internal/core/ports"
	"github.com/samirrijal/hongnam/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/hongnam/internal/core/usecases")

// RestroomService is the entity store: it lists restrooms and applies
// check-in and add mutations.
type RestroomService struct {
	repo      ports.RestroomRepository
	publisher ports.EventPublisher
	cache     ports.CacheService

	now   func() time.Time
	newID func() string
}

// NewRestroomService creates a new RestroomService. publisher and cache may be nil.
func NewRestroomService(repo ports.RestroomRepository, publisher ports.EventPublisher, cache ports.CacheService) *RestroomService {
	return &RestroomService{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
		newID:     newRestroomID,
	}
}

// newRestroomID returns a time-ordered UUID.
func newRestroomID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ListAll returns every restroom, newest additions first.
func (s *RestroomService) ListAll(ctx context.Context) ([]domain.Restroom, error) {
	return s.repo.List(ctx)
}

// Get returns a single restroom.
func (s *RestroomService) Get(ctx context.Context, id string) (*domain.Restroom, error) {
	return s.repo.GetByID(ctx, id)
}

// Revision changes every time the store is mutated.
func (s *RestroomService) Revision() uint64 {
	return s.repo.Revision()
}

// Visible returns the restrooms matching f. Results are cached per store
// epoch and revision, so a mutation always yields a fresh view and a shared
// cache never serves another process's store.
func (s *RestroomService) Visible(ctx context.Context, f domain.Filters) ([]domain.Restroom, error) {
	cacheKey := visibleCacheKey(s.repo.Epoch(), s.repo.Revision(), f)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var restrooms []domain.Restroom
			if err := json.Unmarshal(data, &restrooms); err == nil {
				metrics.CacheHits.WithLabelValues("visible").Inc()
				return restrooms, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("visible").Inc()
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := filter.Visible(all, f)

	// Cache for 5 minutes; the revision in the key does the invalidation.
	if s.cache != nil {
		if data, err := json.Marshal(visible); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return visible, nil
}

func visibleCacheKey(epoch string, rev uint64, f domain.Filters) string {
	price := f.PriceType
	if !price.Active() {
		price = domain.PriceAll
	}
	return fmt.Sprintf("restrooms:visible:%s:%d:%s:%t:%t:%t:%t",
		epoch, rev, price, f.OnlyOpenNow, f.Wheelchair, f.Water, f.BabyChanging)
}

// CheckIn re-verifies a restroom: the verification time is refreshed and
// the trust score goes up by a fixed step, capped at 100.
//
// The answers in in do not influence the score. They are published as a
// CheckInReport for alerting.
func (s *RestroomService) CheckIn(ctx context.Context, id string, in domain.CheckIn) (*domain.Restroom, error) {
	ctx, span := tracer.Start(ctx, "RestroomService.CheckIn")
	defer span.End()
	span.SetAttributes(attribute.String("restroom.id", id))

	if id == "" {
		return nil, fmt.Errorf("check in: %w", domain.ErrNotFound)
	}

	now := s.now()
	updated, err := s.repo.Update(ctx, id, func(r *domain.Restroom) {
		r.LastVerifiedAt = now
		r.TrustScore = domain.ClampTrust(r.TrustScore + domain.CheckInTrustBoost)
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check in %s: %w", id, err)
	}
	metrics.CheckIns.WithLabelValues(string(in.Status), string(in.Cleanliness)).Inc()

	if s.publisher != nil {
		report := &domain.CheckInReport{
			RestroomID:   updated.ID,
			RestroomName: updated.Name,
			CheckIn:      in,
			TrustScore:   updated.TrustScore,
			ReportedAt:   now,
		}
		if err := s.publisher.PublishCheckIn(ctx, report); err != nil {
			slog.WarnContext(ctx, "publish check-in failed", "restroom_id", id, "error", err)
		}
	}

	return updated, nil
}

// Add creates a restroom from a draft at the given point and puts it at the
// front of the list. New records start with a low trust score.
func (s *RestroomService) Add(ctx context.Context, d domain.Draft, at domain.GeoPoint) (*domain.Restroom, error) {
	ctx, span := tracer.Start(ctx, "RestroomService.Add")
	defer span.End()

	if err := validateDraft(d); err != nil {
		metrics.SubmissionsRejected.Inc()
		return nil, err
	}

	price := d.PriceType
	if price == "" {
		price = domain.PriceUnknown
	}
	category := d.Category
	if strings.TrimSpace(category) == "" {
		category = domain.DefaultCategory
	}

	r := &domain.Restroom{
		ID:             s.newID(),
		Name:           d.Name,
		Category:       category,
		Location:       at,
		PriceType:      price,
		Is24h:          d.Open == domain.StatusOpen,
		Wheelchair:     false,
		Water:          true,
		BabyChanging:   false,
		LastVerifiedAt: s.now(),
		TrustScore:     domain.NewTrustScore,
	}
	span.SetAttributes(attribute.String("restroom.id", r.ID))

	if err := s.repo.Prepend(ctx, r); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("add restroom: %w", err)
	}
	metrics.RestroomsAdded.Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishRestroomAdded(ctx, r); err != nil {
			slog.WarnContext(ctx, "publish restroom added failed", "restroom_id", r.ID, "error", err)
		}
	}

	return r, nil
}

// Report flags restroom id for review with an optional note. The report is
// only published; nothing about the restroom changes.
func (s *RestroomService) Report(ctx context.Context, id, message string) (*domain.ProblemReport, error) {
	ctx, span := tracer.Start(ctx, "RestroomService.Report")
	defer span.End()
	span.SetAttributes(attribute.String("restroom.id", id))

	message = strings.TrimSpace(message)
	if len([]rune(message)) > domain.MaxReportMessage {
		return nil, fmt.Errorf("%w: message longer than %d characters", domain.ErrValidation, domain.MaxReportMessage)
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("report %s: %w", id, err)
	}
	metrics.ProblemReports.Inc()

	report := &domain.ProblemReport{
		RestroomID:   r.ID,
		RestroomName: r.Name,
		Message:      message,
		ReportedAt:   s.now(),
	}
	if s.publisher != nil {
		if err := s.publisher.PublishReport(ctx, report); err != nil {
			slog.WarnContext(ctx, "publish report failed", "restroom_id", id, "error", err)
		}
	}
	return report, nil
}

func validateDraft(d domain.Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if d.PriceType != "" && !d.PriceType.Valid() {
		return fmt.Errorf("%w: unknown price type %q", domain.ErrValidation, d.PriceType)
	}
	if d.Open != "" && !d.Open.Valid() {
		return fmt.Errorf("%w: unknown open status %q", domain.ErrValidation, d.Open)
	}
	return nil
}
