package device

import (
	"context"

	"github.com/samirrijal/hongnam/internal/core/domain"
)

// ReportedPhoto forwards the outcome of a client-side photo pick. Only the
// fact that a photo was chosen is kept; image bytes are never uploaded.
type ReportedPhoto struct {
	Granted  bool
	Selected bool
}

// RequestPermission implements ports.PhotoPicker.
func (p ReportedPhoto) RequestPermission(ctx context.Context) (domain.Permission, error) {
	if p.Granted {
		return domain.PermissionGranted, nil
	}
	return domain.PermissionDenied, nil
}

// PickImage implements ports.PhotoPicker.
func (p ReportedPhoto) PickImage(ctx context.Context) (domain.PickResult, error) {
	if p.Selected {
		return domain.PickSelected, nil
	}
	return domain.PickCanceled, nil
}
