package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/core/filter"
	"github.com/samirrijal/hongnam/internal/core/ports"
	"github.com/samirrijal/hongnam/internal/pkg/metrics"
)

// maxPendingNotices bounds the undelivered notice queue.
const maxPendingNotices = 50

// Session is the application state of the single user: filters, selection,
// the three modal forms, the map viewport and pending notices.
//
// Host capability calls never run under the session lock. A capability
// result that arrives after Close or after its context is cancelled is
// dropped without touching the state.
type Session struct {
	store     *RestroomService
	location  ports.LocationProvider
	photos    ports.PhotoPicker
	navigator ports.MapNavigator
	now       func() time.Time

	mu         sync.Mutex
	filters    domain.Filters
	selectedID string
	openModal  domain.Modal
	checkIn    domain.CheckIn
	draft      domain.Draft
	region     domain.Region
	position   *domain.GeoPoint
	notices    []domain.Notice
	subs       map[int]chan domain.Notice
	nextSub    int
	closed     bool
}

// SessionState is a consistent copy of the session.
type SessionState struct {
	Filters   domain.Filters    `json:"filters"`
	Visible   []domain.Restroom `json:"visible"`
	Selected  *domain.Restroom  `json:"selected,omitempty"`
	OpenModal domain.Modal      `json:"open_modal,omitempty"`
	CheckIn   domain.CheckIn    `json:"check_in"`
	Draft     domain.Draft      `json:"draft"`
	Region    domain.Region     `json:"region"`
	Position  *domain.GeoPoint  `json:"position,omitempty"`
	Revision  uint64            `json:"revision"`
}

// NewSession creates a session over store. Any capability may be nil, in
// which case the matching action reports ErrPermissionDenied (location,
// photo) or does nothing (navigation).
func NewSession(store *RestroomService, location ports.LocationProvider, photos ports.PhotoPicker, navigator ports.MapNavigator) *Session {
	return &Session{
		store:     store,
		location:  location,
		photos:    photos,
		navigator: navigator,
		now:       time.Now,
		filters:   domain.DefaultFilters(),
		checkIn:   domain.DefaultCheckIn(),
		draft:     domain.DefaultDraft(),
		region:    domain.InitialRegion,
		subs:      make(map[int]chan domain.Notice),
	}
}

// Snapshot returns the current state with the filtered list and the
// selected restroom resolved against the store.
func (s *Session) Snapshot(ctx context.Context) (SessionState, error) {
	s.mu.Lock()
	st := SessionState{
		Filters:   s.filters,
		OpenModal: s.openModal,
		CheckIn:   s.checkIn,
		Draft:     s.draft,
		Region:    s.region,
	}
	if s.position != nil {
		p := *s.position
		st.Position = &p
	}
	selectedID := s.selectedID
	s.mu.Unlock()

	st.Revision = s.store.Revision()
	visible, err := s.store.Visible(ctx, st.Filters)
	if err != nil {
		return SessionState{}, err
	}
	st.Visible = visible

	if selectedID != "" {
		if r, err := s.store.Get(ctx, selectedID); err == nil {
			st.Selected = r
		}
	}
	return st, nil
}

// Filters returns the active criteria.
func (s *Session) Filters() domain.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters replaces the criteria as a whole.
func (s *Session) SetFilters(f domain.Filters) error {
	if !f.PriceType.Valid() {
		return fmt.Errorf("%w: unknown price filter %q", domain.ErrValidation, f.PriceType)
	}
	if f.PriceType == "" {
		f.PriceType = domain.PriceAll
	}
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
	return nil
}

// Visible returns the restrooms matching the session's filters.
func (s *Session) Visible(ctx context.Context) ([]domain.Restroom, error) {
	return s.store.Visible(ctx, s.Filters())
}

// Select marks id as the selected restroom. The id must exist.
func (s *Session) Select(ctx context.Context, id string) (*domain.Restroom, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", id, err)
	}
	s.mu.Lock()
	s.selectedID = r.ID
	s.mu.Unlock()
	return r, nil
}

// ClearSelection drops the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()
}

// SelectedID returns the selected restroom id, or "" if none.
func (s *Session) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

// Region returns the map viewport.
func (s *Session) Region() domain.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

// SetRegion applies a pan or zoom.
func (s *Session) SetRegion(r domain.Region) error {
	if !r.Valid() {
		return fmt.Errorf("%w: invalid region", domain.ErrValidation)
	}
	s.mu.Lock()
	s.region = r
	s.mu.Unlock()
	return nil
}

// OpenModal opens m. Only one modal is open at a time; opening m closes
// whichever was open before.
func (s *Session) OpenModal(m domain.Modal) error {
	if !m.Valid() {
		return fmt.Errorf("%w: unknown modal %q", domain.ErrValidation, m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openModal != "" && s.openModal != m {
		s.closeModalLocked(s.openModal)
	}
	s.openModal = m
	return nil
}

// CancelModal closes m without submitting it. Closing the add form resets
// the draft.
func (s *Session) CancelModal(m domain.Modal) error {
	if !m.Valid() {
		return fmt.Errorf("%w: unknown modal %q", domain.ErrValidation, m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openModal == m {
		s.closeModalLocked(m)
	}
	return nil
}

func (s *Session) closeModalLocked(m domain.Modal) {
	if m == domain.ModalAdd {
		s.draft = domain.DefaultDraft()
	}
	if s.openModal == m {
		s.openModal = ""
	}
}

// OpenModalName returns the open modal, or "" if none.
func (s *Session) OpenModalName() domain.Modal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openModal
}

// UpdateCheckIn replaces the check-in form answers.
func (s *Session) UpdateCheckIn(in domain.CheckIn) error {
	if !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, in.Status)
	}
	if !in.Cleanliness.Valid() {
		return fmt.Errorf("%w: unknown cleanliness %q", domain.ErrValidation, in.Cleanliness)
	}
	s.mu.Lock()
	s.checkIn = in
	s.mu.Unlock()
	return nil
}

// UpdateDraft replaces the editable draft fields. The photo flag is kept;
// it only changes through AttachPhoto.
func (s *Session) UpdateDraft(d domain.Draft) error {
	if d.PriceType != "" && !d.PriceType.Valid() {
		return fmt.Errorf("%w: unknown price type %q", domain.ErrValidation, d.PriceType)
	}
	if d.Open != "" && !d.Open.Valid() {
		return fmt.Errorf("%w: unknown open status %q", domain.ErrValidation, d.Open)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.PhotoAttached = s.draft.PhotoAttached
	if d.PriceType == "" {
		d.PriceType = s.draft.PriceType
	}
	if d.Open == "" {
		d.Open = s.draft.Open
	}
	if d.Category == "" {
		d.Category = s.draft.Category
	}
	s.draft = d
	return nil
}

// SubmitCheckIn checks in the selected restroom with the form answers.
//
// Without a selection it returns ErrNoSelection and changes nothing. On
// success the check-in modal closes and the need-code, must-pay and must-buy
// flags reset; status and cleanliness keep their values.
func (s *Session) SubmitCheckIn(ctx context.Context) (*domain.Restroom, error) {
	s.mu.Lock()
	id := s.selectedID
	answers := s.checkIn
	s.mu.Unlock()

	if id == "" {
		return nil, domain.ErrNoSelection
	}

	updated, err := s.store.CheckIn(ctx, id, answers)
	if err != nil {
		s.Notify(domain.Notice{
			Kind:    domain.NoticeWarning,
			Title:   "Check-in failed",
			Message: "This restroom is no longer available.",
		})
		return nil, err
	}

	s.mu.Lock()
	if s.openModal == domain.ModalCheckIn {
		s.closeModalLocked(domain.ModalCheckIn)
	}
	s.checkIn.NeedCode = false
	s.checkIn.MustPay = false
	s.checkIn.MustBuy = false
	s.notifyLocked(domain.Notice{
		Kind:    domain.NoticeSuccess,
		Title:   "Thank you",
		Message: fmt.Sprintf("Updated: %s, cleanliness: %s", answers.Status, answers.Cleanliness),
	})
	s.mu.Unlock()

	return updated, nil
}

// SubmitAdd creates a restroom from the draft at the viewport center.
//
// A draft without a name is rejected with ErrValidation and the form stays
// open. On success the add modal closes, the name and photo flag clear and
// the category, price and open selectors keep their values.
func (s *Session) SubmitAdd(ctx context.Context) (*domain.Restroom, error) {
	s.mu.Lock()
	draft := s.draft
	at := s.region.Center()
	s.mu.Unlock()

	created, err := s.store.Add(ctx, draft, at)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.Notify(domain.Notice{
				Kind:    domain.NoticeWarning,
				Title:   "Missing information",
				Message: `Please enter a name, or "unknown name".`,
			})
		}
		return nil, err
	}

	s.mu.Lock()
	if s.openModal == domain.ModalAdd {
		s.openModal = ""
	}
	s.draft.Name = ""
	s.draft.PhotoAttached = false
	s.notifyLocked(domain.Notice{
		Kind:    domain.NoticeSuccess,
		Title:   "Added",
		Message: "A new pin was created (pending verification).",
	})
	s.mu.Unlock()

	return created, nil
}

// Emergency selects the best restroom for the current filters. When the
// device position is known the closest match wins, otherwise the first match
// in list order. It returns ErrNoMatch when nothing matches.
func (s *Session) Emergency(ctx context.Context) (*domain.Restroom, error) {
	s.mu.Lock()
	f := s.filters
	var from *domain.GeoPoint
	if s.position != nil {
		p := *s.position
		from = &p
	}
	s.mu.Unlock()

	visible, err := s.store.Visible(ctx, f)
	if err != nil {
		return nil, err
	}

	best, ok := filter.NearestOrBest(visible, from)
	if !ok {
		metrics.EmergencyLookups.WithLabelValues("no_match").Inc()
		s.Notify(domain.Notice{
			Kind:    domain.NoticeWarning,
			Title:   "No matching restroom",
			Message: "Try turning off some filters and search again.",
		})
		return nil, domain.ErrNoMatch
	}
	metrics.EmergencyLookups.WithLabelValues("match").Inc()

	s.mu.Lock()
	s.selectedID = best.ID
	s.notifyLocked(domain.Notice{
		Kind:    domain.NoticeEmergency,
		Title:   "Emergency",
		Message: fmt.Sprintf("Suggested: %s\nUse Navigate to open an external map.", best.Name),
	})
	s.mu.Unlock()

	return &best, nil
}

// LocateMe recentres the viewport on the device position using the
// session's location capability.
func (s *Session) LocateMe(ctx context.Context) (domain.Region, error) {
	return s.LocateMeWith(ctx, s.location)
}

// LocateMeWith is LocateMe with an explicit location capability.
//
// Denial leaves the viewport unchanged and returns ErrPermissionDenied. If
// the session is closed before the position arrives the result is discarded
// and the zero Region is returned with a nil error.
func (s *Session) LocateMeWith(ctx context.Context, loc ports.LocationProvider) (domain.Region, error) {
	if loc == nil {
		return s.locationDenied()
	}

	perm, err := loc.RequestPermission(ctx)
	if err != nil {
		return domain.Region{}, s.capabilityFailed("Location unavailable", err)
	}
	if perm != domain.PermissionGranted {
		return s.locationDenied()
	}

	pos, err := loc.CurrentPosition(ctx)
	if err != nil {
		return domain.Region{}, s.capabilityFailed("Location unavailable", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		slog.Debug("location result discarded after session close")
		return domain.Region{}, nil
	}
	if err := ctx.Err(); err != nil {
		slog.Debug("location result discarded after cancel", "error", err)
		return domain.Region{}, err
	}
	s.position = &pos
	s.region = domain.RegionAround(pos, domain.NearMeSpan)
	return s.region, nil
}

func (s *Session) locationDenied() (domain.Region, error) {
	metrics.PermissionDenials.WithLabelValues("location").Inc()
	s.Notify(domain.Notice{
		Kind:    domain.NoticeWarning,
		Title:   "Location permission required",
		Message: "Please allow location access to find restrooms near you.",
	})
	return domain.Region{}, fmt.Errorf("location: %w", domain.ErrPermissionDenied)
}

// AttachPhoto asks the photo capability for an image and marks the draft
// as having a photo when one is selected.
func (s *Session) AttachPhoto(ctx context.Context) (bool, error) {
	return s.AttachPhotoWith(ctx, s.photos)
}

// AttachPhotoWith is AttachPhoto with an explicit photo capability. It
// reports whether the draft now has a photo attached. A canceled pick leaves
// the draft unchanged.
func (s *Session) AttachPhotoWith(ctx context.Context, picker ports.PhotoPicker) (bool, error) {
	if picker == nil {
		return false, s.photoDenied()
	}

	perm, err := picker.RequestPermission(ctx)
	if err != nil {
		return false, s.capabilityFailed("Photo library unavailable", err)
	}
	if perm != domain.PermissionGranted {
		return false, s.photoDenied()
	}

	res, err := picker.PickImage(ctx)
	if err != nil {
		return false, s.capabilityFailed("Photo library unavailable", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		slog.Debug("photo result discarded after session close")
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return s.draft.PhotoAttached, err
	}
	switch res {
	case domain.PickSelected:
		s.draft.PhotoAttached = true
	case domain.PickCanceled:
		// draft unchanged
	}
	return s.draft.PhotoAttached, nil
}

func (s *Session) photoDenied() error {
	metrics.PermissionDenials.WithLabelValues("photo").Inc()
	s.Notify(domain.Notice{
		Kind:    domain.NoticeWarning,
		Title:   "Photo permission required",
		Message: "Please allow photo access to attach a verification picture.",
	})
	return fmt.Errorf("photo: %w", domain.ErrPermissionDenied)
}

func (s *Session) capabilityFailed(title string, err error) error {
	s.Notify(domain.Notice{Kind: domain.NoticeWarning, Title: title, Message: err.Error()})
	return err
}

// Navigate hands the selected restroom to the external map application.
func (s *Session) Navigate(ctx context.Context) (*domain.Restroom, error) {
	id := s.SelectedID()
	if id == "" {
		return nil, domain.ErrNoSelection
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", id, err)
	}
	if s.navigator != nil {
		s.navigator.Open(ctx, r.Location, r.Name)
	}
	return r, nil
}

// Report flags the selected restroom for review and thanks the user.
func (s *Session) Report(ctx context.Context, message string) (*domain.ProblemReport, error) {
	id := s.SelectedID()
	if id == "" {
		return nil, domain.ErrNoSelection
	}
	report, err := s.store.Report(ctx, id, message)
	if err != nil {
		return nil, err
	}
	s.Notify(domain.Notice{
		Kind:    domain.NoticeSuccess,
		Title:   "Thank you",
		Message: "Your report was received and will be reviewed.",
	})
	return report, nil
}

// Position returns the last known device position, or nil before a
// successful locate.
func (s *Session) Position() *domain.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position == nil {
		return nil
	}
	p := *s.position
	return &p
}

// Notify queues a one-shot notice and fans it out to subscribers.
func (s *Session) Notify(n domain.Notice) {
	s.mu.Lock()
	s.notifyLocked(n)
	s.mu.Unlock()
}

func (s *Session) notifyLocked(n domain.Notice) {
	if s.closed {
		return
	}
	if n.At.IsZero() {
		n.At = s.now()
	}
	s.notices = append(s.notices, n)
	if len(s.notices) > maxPendingNotices {
		s.notices = s.notices[len(s.notices)-maxPendingNotices:]
	}
	for _, ch := range s.subs {
		select {
		case ch <- n:
		default:
			// slow subscriber; it can still drain the queue
		}
	}
}

// DrainNotices returns and clears the pending notices.
func (s *Session) DrainNotices() []domain.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// Subscribe returns a channel receiving every future notice and a function
// that unsubscribes and closes it.
func (s *Session) Subscribe() (<-chan domain.Notice, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan domain.Notice, 16)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close tears the session down. Later capability results are discarded and
// subscriber channels are closed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
