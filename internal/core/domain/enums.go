package domain

// PriceType classifies whether a restroom charges for entry.
type PriceType string

const (
	PriceFree    PriceType = "free"
	PricePaid    PriceType = "paid"
	PriceUnknown PriceType = "unknown"
)

// Valid reports whether p is a known price classification.
func (p PriceType) Valid() bool {
	switch p {
	case PriceFree, PricePaid, PriceUnknown:
		return true
	}
	return false
}

// PriceFilter is a PriceType selector that also accepts "all".
type PriceFilter string

const (
	PriceAll           PriceFilter = "all"
	PriceFilterFree    PriceFilter = PriceFilter(PriceFree)
	PriceFilterPaid    PriceFilter = PriceFilter(PricePaid)
	PriceFilterUnknown PriceFilter = PriceFilter(PriceUnknown)
)

// Valid reports whether f is "all" or a known price classification.
// The empty string is accepted and treated as "all".
func (f PriceFilter) Valid() bool {
	return f == "" || f == PriceAll || PriceType(f).Valid()
}

// Active reports whether the selector restricts the result.
func (f PriceFilter) Active() bool {
	return f != "" && f != PriceAll
}

// CheckStatus is the open/closed state reported by a visitor.
type CheckStatus string

const (
	StatusOpen    CheckStatus = "open"
	StatusClosed  CheckStatus = "closed"
	StatusUnknown CheckStatus = "unknown"
)

func (s CheckStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusUnknown:
		return true
	}
	return false
}

// Cleanliness is the visitor's rating of the facility.
type Cleanliness string

const (
	CleanGood Cleanliness = "good"
	CleanOK   Cleanliness = "ok"
	CleanBad  Cleanliness = "bad"
)

func (c Cleanliness) Valid() bool {
	switch c {
	case CleanGood, CleanOK, CleanBad:
		return true
	}
	return false
}

// Permission is the outcome of a host permission request.
type Permission int

const (
	PermissionDenied Permission = iota
	PermissionGranted
)

func (p Permission) String() string {
	if p == PermissionGranted {
		return "granted"
	}
	return "denied"
}

// PickResult is the outcome of an image picker session.
type PickResult int

const (
	PickCanceled PickResult = iota
	PickSelected
)
