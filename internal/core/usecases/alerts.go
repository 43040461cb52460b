package usecases

import (
	"context"
	"log/slog"

	"github.com/samirrijal/hongnam/internal/core/domain"
)

// Alert reasons raised by a check-in report.
const (
	AlertClosed   = "closed"
	AlertDirty    = "dirty"
	AlertNeedCode = "need_code"
	AlertMustPay  = "must_pay"
	AlertMustBuy  = "must_buy"
)

// AlertReasons lists what in a check-in deserves operator attention. An
// empty result means the visit was unremarkable.
func AlertReasons(in domain.CheckIn) []string {
	var reasons []string
	if in.Status == domain.StatusClosed {
		reasons = append(reasons, AlertClosed)
	}
	if in.Cleanliness == domain.CleanBad {
		reasons = append(reasons, AlertDirty)
	}
	if in.NeedCode {
		reasons = append(reasons, AlertNeedCode)
	}
	if in.MustPay {
		reasons = append(reasons, AlertMustPay)
	}
	if in.MustBuy {
		reasons = append(reasons, AlertMustBuy)
	}
	return reasons
}

// AlertService consumes check-in, report and restroom events and logs the ones an
// operator should look at.
type AlertService struct {
	logger *slog.Logger
}

// NewAlertService creates an AlertService. A nil logger uses slog.Default.
func NewAlertService(logger *slog.Logger) *AlertService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertService{logger: logger}
}

// HandleCheckIn logs a warning for reports with alert reasons.
func (a *AlertService) HandleCheckIn(ctx context.Context, report *domain.CheckInReport) error {
	reasons := AlertReasons(report.CheckIn)
	if len(reasons) == 0 {
		a.logger.DebugContext(ctx, "check-in ok", "restroom_id", report.RestroomID)
		return nil
	}
	a.logger.WarnContext(ctx, "restroom needs attention",
		"restroom_id", report.RestroomID,
		"restroom_name", report.RestroomName,
		"reasons", reasons,
		"trust_score", report.TrustScore,
		"reported_at", report.ReportedAt,
	)
	return nil
}

// HandleReport logs a user-flagged restroom for review.
func (a *AlertService) HandleReport(ctx context.Context, report *domain.ProblemReport) error {
	a.logger.WarnContext(ctx, "restroom reported",
		"restroom_id", report.RestroomID,
		"restroom_name", report.RestroomName,
		"message", report.Message,
		"reported_at", report.ReportedAt,
	)
	return nil
}

// HandleRestroomAdded queues a user-submitted restroom for review.
func (a *AlertService) HandleRestroomAdded(ctx context.Context, r *domain.Restroom) error {
	a.logger.InfoContext(ctx, "restroom pending review",
		"restroom_id", r.ID,
		"name", r.Name,
		"lat", r.Location.Lat,
		"lon", r.Location.Lon,
		"price_type", r.PriceType,
	)
	return nil
}
