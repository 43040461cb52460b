package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/hongnam/internal/adapters/memory"
	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/core/usecases"
)

func newSession(rs []domain.Restroom) (*usecases.Session, *memory.RestroomRepo) {
	svc, repo := newStore(rs)
	return usecases.NewSession(svc, nil, nil, nil), repo
}

func TestSession_Defaults(t *testing.T) {
	sess, _ := newSession(seed())
	st, err := sess.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Filters != domain.DefaultFilters() {
		t.Errorf("unexpected filters %+v", st.Filters)
	}
	if st.OpenModal != "" || st.Selected != nil {
		t.Errorf("expected nothing open or selected, got %+v", st)
	}
	if st.Draft != domain.DefaultDraft() || st.CheckIn != domain.DefaultCheckIn() {
		t.Errorf("unexpected form state %+v / %+v", st.Draft, st.CheckIn)
	}
	if st.Region != domain.InitialRegion {
		t.Errorf("unexpected region %+v", st.Region)
	}
	if len(st.Visible) != 2 {
		t.Errorf("expected 2 visible, got %d", len(st.Visible))
	}
}

func TestSession_EmergencyPicksFirstMatch(t *testing.T) {
	sess, _ := newSession(seed())

	best, err := sess.Emergency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.ID != "1" || sess.SelectedID() != "1" {
		t.Fatalf("expected A selected, got %s / %s", best.ID, sess.SelectedID())
	}

	notices := sess.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != domain.NoticeEmergency {
		t.Fatalf("expected one emergency notice, got %+v", notices)
	}
}

func TestSession_EmergencyWithBabyChanging(t *testing.T) {
	sess, _ := newSession(seed())
	_ = sess.SetFilters(domain.Filters{PriceType: domain.PriceAll, BabyChanging: true})

	best, err := sess.Emergency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.ID != "2" {
		t.Fatalf("expected B, got %s", best.ID)
	}
}

func TestSession_EmergencyNoMatch(t *testing.T) {
	sess, _ := newSession(seed())
	_ = sess.SetFilters(domain.Filters{PriceType: domain.PriceFilterPaid})
	_, _ = sess.Select(context.Background(), "2")
	sess.DrainNotices()

	_, err := sess.Emergency(context.Background())
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if sess.SelectedID() != "2" {
		t.Errorf("selection must be unchanged, got %q", sess.SelectedID())
	}
	notices := sess.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != domain.NoticeWarning {
		t.Fatalf("expected one warning notice, got %+v", notices)
	}
}

func TestSession_EmergencyNearestAfterLocate(t *testing.T) {
	svc, _ := newStore(seed())
	// Sukhumvit park is much closer to this point than Bang Na.
	loc := &mockLocation{permission: domain.PermissionGranted, position: domain.GeoPoint{Lat: 13.73, Lon: 100.57}}
	sess := usecases.NewSession(svc, loc, nil, nil)

	if _, err := sess.LocateMe(context.Background()); err != nil {
		t.Fatalf("locate: %v", err)
	}
	best, err := sess.Emergency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.ID != "2" {
		t.Fatalf("expected the nearest restroom B, got %s", best.ID)
	}
}

func TestSession_SetFiltersRejectsUnknownPrice(t *testing.T) {
	sess, _ := newSession(seed())
	if err := sess.SetFilters(domain.Filters{PriceType: "cheap"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if sess.Filters() != domain.DefaultFilters() {
		t.Errorf("filters changed on invalid input")
	}
}

func TestSession_SelectUnknown(t *testing.T) {
	sess, _ := newSession(seed())
	if _, err := sess.Select(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if sess.SelectedID() != "" {
		t.Errorf("expected no selection")
	}
}

func TestSession_ModalsAreExclusive(t *testing.T) {
	sess, _ := newSession(seed())

	_ = sess.OpenModal(domain.ModalFilter)
	_ = sess.OpenModal(domain.ModalCheckIn)
	if sess.OpenModalName() != domain.ModalCheckIn {
		t.Fatalf("expected checkin open, got %q", sess.OpenModalName())
	}
	_ = sess.OpenModal(domain.ModalAdd)
	if sess.OpenModalName() != domain.ModalAdd {
		t.Fatalf("expected add open, got %q", sess.OpenModalName())
	}

	if err := sess.OpenModal("settings"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if sess.OpenModalName() != domain.ModalAdd {
		t.Fatalf("invalid modal must not change state")
	}
}

func TestSession_CancelAddResetsDraft(t *testing.T) {
	sess, _ := newSession(seed())
	_ = sess.OpenModal(domain.ModalAdd)
	_ = sess.UpdateDraft(domain.Draft{Name: "half typed", Category: "park", PriceType: domain.PricePaid})

	_ = sess.CancelModal(domain.ModalAdd)

	st, _ := sess.Snapshot(context.Background())
	if st.OpenModal != "" {
		t.Errorf("expected modal closed, got %q", st.OpenModal)
	}
	if st.Draft != domain.DefaultDraft() {
		t.Errorf("expected draft reset, got %+v", st.Draft)
	}
}

func TestSession_SwitchingAwayFromAddResetsDraft(t *testing.T) {
	sess, _ := newSession(seed())
	_ = sess.OpenModal(domain.ModalAdd)
	_ = sess.UpdateDraft(domain.Draft{Name: "half typed"})
	_ = sess.OpenModal(domain.ModalFilter)

	st, _ := sess.Snapshot(context.Background())
	if st.Draft.Name != "" {
		t.Errorf("expected draft reset when add modal closes, got %+v", st.Draft)
	}
}

func TestSession_SubmitCheckInWithoutSelection(t *testing.T) {
	sess, repo := newSession(seed())
	_ = sess.OpenModal(domain.ModalCheckIn)

	_, err := sess.SubmitCheckIn(context.Background())
	if !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if repo.Revision() != 0 {
		t.Errorf("store mutated without selection")
	}
	if sess.OpenModalName() != domain.ModalCheckIn {
		t.Errorf("modal must stay open")
	}
}

func TestSession_SubmitCheckIn(t *testing.T) {
	sess, _ := newSession(seed())
	ctx := context.Background()

	if _, err := sess.Select(ctx, "2"); err != nil {
		t.Fatal(err)
	}
	_ = sess.OpenModal(domain.ModalCheckIn)
	answers := domain.CheckIn{Status: domain.StatusClosed, Cleanliness: domain.CleanBad, NeedCode: true, MustPay: true, MustBuy: true}
	if err := sess.UpdateCheckIn(answers); err != nil {
		t.Fatal(err)
	}

	updated, err := sess.SubmitCheckIn(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.TrustScore != 67 {
		t.Errorf("expected trust 67, got %d", updated.TrustScore)
	}

	st, _ := sess.Snapshot(ctx)
	if st.OpenModal != "" {
		t.Errorf("expected modal closed, got %q", st.OpenModal)
	}
	want := domain.CheckIn{Status: domain.StatusClosed, Cleanliness: domain.CleanBad}
	if st.CheckIn != want {
		t.Errorf("expected flags reset and answers kept, got %+v", st.CheckIn)
	}
	if st.Selected == nil || st.Selected.TrustScore != 67 {
		t.Errorf("selected restroom not refreshed: %+v", st.Selected)
	}

	notices := sess.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != domain.NoticeSuccess {
		t.Fatalf("expected a success notice, got %+v", notices)
	}
}

func TestSession_UpdateCheckInRejectsUnknown(t *testing.T) {
	sess, _ := newSession(seed())
	if err := sess.UpdateCheckIn(domain.CheckIn{Status: "maybe", Cleanliness: domain.CleanOK}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSession_SubmitAddEmptyName(t *testing.T) {
	sess, repo := newSession(seed())
	_ = sess.OpenModal(domain.ModalAdd)
	_ = sess.UpdateDraft(domain.Draft{Name: "   "})

	_, err := sess.SubmitAdd(context.Background())
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if repo.Len() != 2 {
		t.Errorf("store grew on invalid submit")
	}
	if sess.OpenModalName() != domain.ModalAdd {
		t.Errorf("form must stay open")
	}
	notices := sess.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != domain.NoticeWarning {
		t.Fatalf("expected a warning notice, got %+v", notices)
	}
}

func TestSession_SubmitAdd(t *testing.T) {
	sess, _ := newSession(seed())
	ctx := context.Background()

	region := domain.RegionAround(domain.GeoPoint{Lat: 13.8, Lon: 100.6}, domain.DefaultSpan)
	_ = sess.SetRegion(region)
	_ = sess.OpenModal(domain.ModalAdd)
	_ = sess.UpdateDraft(domain.Draft{Name: "Chatuchak", Category: "park", PriceType: domain.PriceFree, Open: domain.StatusOpen})
	_, _ = sess.AttachPhotoWith(ctx, &mockPhotos{permission: domain.PermissionGranted, result: domain.PickSelected})

	created, err := sess.SubmitAdd(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Location != region.Center() {
		t.Errorf("expected restroom at viewport center, got %v", created.Location)
	}

	st, _ := sess.Snapshot(ctx)
	if st.Visible[0].ID != created.ID {
		t.Errorf("expected new restroom first")
	}
	if st.OpenModal != "" {
		t.Errorf("expected modal closed")
	}
	want := domain.Draft{Category: "park", PriceType: domain.PriceFree, Open: domain.StatusOpen}
	if st.Draft != want {
		t.Errorf("expected name and photo cleared only, got %+v", st.Draft)
	}
}

func TestSession_UpdateDraftKeepsPhotoFlag(t *testing.T) {
	sess, _ := newSession(seed())
	ctx := context.Background()
	_, _ = sess.AttachPhotoWith(ctx, &mockPhotos{permission: domain.PermissionGranted, result: domain.PickSelected})

	_ = sess.UpdateDraft(domain.Draft{Name: "x", PhotoAttached: false})

	st, _ := sess.Snapshot(ctx)
	if !st.Draft.PhotoAttached {
		t.Error("photo flag must only change through AttachPhoto")
	}
}

func TestSession_LocateMeGranted(t *testing.T) {
	svc, _ := newStore(seed())
	p := domain.GeoPoint{Lat: 13.7, Lon: 100.5}
	sess := usecases.NewSession(svc, &mockLocation{permission: domain.PermissionGranted, position: p}, nil, nil)

	region, err := sess.LocateMe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.RegionAround(p, domain.NearMeSpan)
	if region != want || sess.Region() != want {
		t.Fatalf("expected %+v, got %+v", want, sess.Region())
	}
}

func TestSession_Position(t *testing.T) {
	svc, _ := newStore(seed())
	p := domain.GeoPoint{Lat: 13.7, Lon: 100.5}
	sess := usecases.NewSession(svc, &mockLocation{permission: domain.PermissionGranted, position: p}, nil, nil)

	if got := sess.Position(); got != nil {
		t.Fatalf("expected no position before locate, got %+v", *got)
	}
	if _, err := sess.LocateMe(context.Background()); err != nil {
		t.Fatalf("locate: %v", err)
	}
	got := sess.Position()
	if got == nil || *got != p {
		t.Fatalf("expected %+v, got %v", p, got)
	}

	// the caller gets a copy
	got.Lat = 0
	if again := sess.Position(); again.Lat != p.Lat {
		t.Errorf("position mutated through returned pointer: %+v", *again)
	}
}

func TestSession_LocateMeDenied(t *testing.T) {
	svc, _ := newStore(seed())
	loc := &mockLocation{permission: domain.PermissionDenied}
	sess := usecases.NewSession(svc, loc, nil, nil)

	_, err := sess.LocateMe(context.Background())
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if sess.Region() != domain.InitialRegion {
		t.Errorf("region must be unchanged on denial")
	}
	notices := sess.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != domain.NoticeWarning {
		t.Fatalf("expected a warning notice, got %+v", notices)
	}
}

func TestSession_LocateMeNoCapability(t *testing.T) {
	sess, _ := newSession(seed())
	if _, err := sess.LocateMe(context.Background()); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestSession_LocateMeErrorSurfacesOnce(t *testing.T) {
	svc, _ := newStore(seed())
	boom := errors.New("gps timeout")
	sess := usecases.NewSession(svc, &mockLocation{permission: domain.PermissionGranted, err: boom}, nil, nil)

	if _, err := sess.LocateMe(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected gps error, got %v", err)
	}
	if n := sess.DrainNotices(); len(n) != 1 {
		t.Fatalf("expected exactly one notice, got %d", len(n))
	}
	if sess.Region() != domain.InitialRegion {
		t.Errorf("region must be unchanged on failure")
	}
}

func TestSession_LateLocationAfterClose(t *testing.T) {
	svc, _ := newStore(seed())
	loc := &mockLocation{
		permission: domain.PermissionGranted,
		position:   domain.GeoPoint{Lat: 1, Lon: 1},
		release:    make(chan struct{}),
		started:    make(chan struct{}),
	}
	sess := usecases.NewSession(svc, loc, nil, nil)

	type result struct {
		region domain.Region
		err    error
	}
	done := make(chan result, 1)
	go func() {
		r, err := sess.LocateMe(context.Background())
		done <- result{r, err}
	}()

	<-loc.started
	sess.Close()
	close(loc.release)

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("expected late result to be dropped silently, got %v", res.err)
		}
		if res.region != (domain.Region{}) {
			t.Errorf("expected zero region, got %+v", res.region)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("LocateMe did not return")
	}
	if sess.Region() != domain.InitialRegion {
		t.Errorf("late result mutated the session: %+v", sess.Region())
	}
}

func TestSession_LateLocationAfterCancel(t *testing.T) {
	svc, _ := newStore(seed())
	loc := &mockLocation{
		permission: domain.PermissionGranted,
		position:   domain.GeoPoint{Lat: 1, Lon: 1},
		release:    make(chan struct{}),
		started:    make(chan struct{}),
	}
	sess := usecases.NewSession(svc, loc, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := sess.LocateMe(ctx)
		done <- err
	}()

	<-loc.started
	cancel()
	close(loc.release)

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if sess.Region() != domain.InitialRegion {
		t.Errorf("cancelled result mutated the session")
	}
}

func TestSession_AttachPhoto(t *testing.T) {
	tests := []struct {
		name       string
		photos     *mockPhotos
		wantErr    error
		wantPhoto  bool
		wantPicked int
	}{
		{"denied", &mockPhotos{permission: domain.PermissionDenied}, domain.ErrPermissionDenied, false, 0},
		{"canceled", &mockPhotos{permission: domain.PermissionGranted, result: domain.PickCanceled}, nil, false, 1},
		{"selected", &mockPhotos{permission: domain.PermissionGranted, result: domain.PickSelected}, nil, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newStore(seed())
			sess := usecases.NewSession(svc, nil, tt.photos, nil)

			attached, err := sess.AttachPhoto(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if attached != tt.wantPhoto {
				t.Errorf("expected attached=%v, got %v", tt.wantPhoto, attached)
			}
			if tt.photos.picks != tt.wantPicked {
				t.Errorf("expected %d picks, got %d", tt.wantPicked, tt.photos.picks)
			}
		})
	}
}

func TestSession_Navigate(t *testing.T) {
	svc, _ := newStore(seed())
	nav := &mockNavigator{}
	sess := usecases.NewSession(svc, nil, nil, nav)
	ctx := context.Background()

	if _, err := sess.Navigate(ctx); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if len(nav.opened) != 0 {
		t.Fatalf("navigator called without selection")
	}

	_, _ = sess.Select(ctx, "1")
	r, err := sess.Navigate(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nav.opened) != 1 || nav.to != r.Location {
		t.Fatalf("expected handoff to %v, got %+v", r.Location, nav)
	}
}

func TestSession_Report(t *testing.T) {
	svc, _ := newStore(seed())
	sess := usecases.NewSession(svc, nil, nil, nil)
	ctx := context.Background()

	if _, err := sess.Report(ctx, "broken"); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if n := sess.DrainNotices(); len(n) != 0 {
		t.Fatalf("expected no notice without a selection, got %+v", n)
	}

	_, _ = sess.Select(ctx, "2")
	before, _ := svc.Get(ctx, "2")
	rev := svc.Revision()

	report, err := sess.Report(ctx, "broken")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RestroomID != "2" || report.RestroomName != before.Name || report.Message != "broken" {
		t.Errorf("unexpected report %+v", report)
	}
	notices := sess.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != domain.NoticeSuccess {
		t.Fatalf("expected one success notice, got %+v", notices)
	}

	after, _ := svc.Get(ctx, "2")
	if svc.Revision() != rev || *after != *before {
		t.Error("report must not change the restroom")
	}
	if sess.SelectedID() != "2" {
		t.Error("report must keep the selection")
	}
}

func TestSession_SubscribeReceivesNotices(t *testing.T) {
	sess, _ := newSession(seed())
	ch, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	sess.Notify(domain.Notice{Kind: domain.NoticeInfo, Title: "hello"})

	select {
	case n := <-ch:
		if n.Title != "hello" || n.At.IsZero() {
			t.Fatalf("unexpected notice %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("no notice delivered")
	}

	sess.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after Close")
	}
	unsubscribe()
}

func TestSession_NoticesAreBounded(t *testing.T) {
	sess, _ := newSession(nil)
	for i := 0; i < 80; i++ {
		sess.Notify(domain.Notice{Kind: domain.NoticeInfo, Title: "n"})
	}
	if n := sess.DrainNotices(); len(n) != 50 {
		t.Fatalf("expected 50 pending notices, got %d", len(n))
	}
	if n := sess.DrainNotices(); len(n) != 0 {
		t.Fatalf("expected notices to be one-shot, got %d", len(n))
	}
}

func TestSession_SetRegionRejectsInvalid(t *testing.T) {
	sess, _ := newSession(nil)
	if err := sess.SetRegion(domain.Region{Latitude: 100, LatitudeDelta: 0.1, LongitudeDelta: 0.1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
