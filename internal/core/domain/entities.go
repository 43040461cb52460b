package domain

import (
	"time"
)

// Trust score bounds and steps.
const (
	MinTrustScore     = 0
	MaxTrustScore     = 100
	NewTrustScore     = 25
	CheckInTrustBoost = 2
)

// Restroom is a single public restroom record.
type Restroom struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Location       GeoPoint  `json:"location"`
	PriceType      PriceType `json:"price_type"`
	Is24h          bool      `json:"is_24h"`
	Wheelchair     bool      `json:"wheelchair"`
	Water          bool      `json:"water"`
	BabyChanging   bool      `json:"baby_changing"`
	LastVerifiedAt time.Time `json:"last_verified_at"`
	TrustScore     int       `json:"trust_score"`
}

// Verified reports whether the record has been confirmed often enough to be
// shown as trusted on the map.
func (r Restroom) Verified() bool {
	return r.TrustScore > 70
}

// ClampTrust keeps a trust score inside [MinTrustScore, MaxTrustScore].
func ClampTrust(score int) int {
	if score < MinTrustScore {
		return MinTrustScore
	}
	if score > MaxTrustScore {
		return MaxTrustScore
	}
	return score
}

// Filters are the active list criteria. A zero Filters matches everything
// once PriceType is normalised to PriceAll.
type Filters struct {
	OnlyOpenNow  bool        `json:"only_open_now"`
	PriceType    PriceFilter `json:"price_type"`
	Wheelchair   bool        `json:"wheelchair"`
	Water        bool        `json:"water"`
	BabyChanging bool        `json:"baby_changing"`
}

// DefaultFilters returns criteria that match every restroom.
func DefaultFilters() Filters {
	return Filters{PriceType: PriceAll}
}

// Draft is the unsaved state of the "add restroom" form.
type Draft struct {
	Name          string      `json:"name"`
	Category      string      `json:"category"`
	PriceType     PriceType   `json:"price_type"`
	Open          CheckStatus `json:"open"`
	PhotoAttached bool        `json:"photo_attached"`
}

// DefaultCategory is the category preselected on a fresh draft.
const DefaultCategory = "อื่น ๆ"

// DefaultDraft returns a fresh add-form state.
func DefaultDraft() Draft {
	return Draft{
		Category:  DefaultCategory,
		PriceType: PriceUnknown,
		Open:      StatusUnknown,
	}
}

// CheckIn holds the answers of the check-in form.
type CheckIn struct {
	Status      CheckStatus `json:"status"`
	Cleanliness Cleanliness `json:"cleanliness"`
	NeedCode    bool        `json:"need_code"`
	MustPay     bool        `json:"must_pay"`
	MustBuy     bool        `json:"must_buy"`
}

// DefaultCheckIn returns a fresh check-in form state.
func DefaultCheckIn() CheckIn {
	return CheckIn{Status: StatusOpen, Cleanliness: CleanGood}
}

// CheckInReport is published after a successful check-in for alerting.
// The answers are not stored on the restroom.
type CheckInReport struct {
	RestroomID   string    `json:"restroom_id"`
	RestroomName string    `json:"restroom_name"`
	CheckIn      CheckIn   `json:"check_in"`
	TrustScore   int       `json:"trust_score"`
	ReportedAt   time.Time `json:"reported_at"`
}

// ProblemReport flags a restroom for operator review, for example a wrong
// location or a facility that no longer exists.
type ProblemReport struct {
	RestroomID   string    `json:"restroom_id"`
	RestroomName string    `json:"restroom_name"`
	Message      string    `json:"message,omitempty"`
	ReportedAt   time.Time `json:"reported_at"`
}

// MaxReportMessage is the longest free-text note a problem report accepts.
const MaxReportMessage = 500

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeInfo       NoticeKind = "info"
	NoticeSuccess    NoticeKind = "success"
	NoticeWarning    NoticeKind = "warning"
	NoticeEmergency  NoticeKind = "emergency"
	NoticeNavigation NoticeKind = "navigation"
)

// Notice is a one-shot message surfaced to the user.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	URL     string     `json:"url,omitempty"`
	At      time.Time  `json:"at"`
}

// Modal identifies one of the session's forms.
type Modal string

const (
	ModalFilter  Modal = "filter"
	ModalCheckIn Modal = "checkin"
	ModalAdd     Modal = "add"
)

// Valid reports whether m names a known modal.
func (m Modal) Valid() bool {
	switch m {
	case ModalFilter, ModalCheckIn, ModalAdd:
		return true
	}
	return false
}
