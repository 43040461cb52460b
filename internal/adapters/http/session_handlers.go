package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/hongnam/internal/adapters/device"
	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/core/usecases"
)

// sessionView is the wire form of usecases.SessionState.
type sessionView struct {
	Filters   domain.Filters   `json:"filters"`
	Visible   []restroomView   `json:"visible"`
	Selected  *restroomView    `json:"selected,omitempty"`
	OpenModal domain.Modal     `json:"open_modal,omitempty"`
	CheckIn   domain.CheckIn   `json:"check_in"`
	Draft     domain.Draft     `json:"draft"`
	Region    domain.Region    `json:"region"`
	Position  *domain.GeoPoint `json:"position,omitempty"`
	Revision  uint64           `json:"revision"`
}

func newSessionView(st usecases.SessionState) sessionView {
	v := sessionView{
		Filters:   st.Filters,
		Visible:   newRestroomViews(st.Visible, st.Position),
		OpenModal: st.OpenModal,
		CheckIn:   st.CheckIn,
		Draft:     st.Draft,
		Region:    st.Region,
		Position:  st.Position,
		Revision:  st.Revision,
	}
	if st.Selected != nil {
		sel := newRestroomView(*st.Selected, st.Position)
		v.Selected = &sel
	}
	return v
}

// renderSession responds with the current session snapshot.
func renderSession(c *fiber.Ctx, deps *Dependencies, status int) error {
	st, err := deps.Session.Snapshot(c.UserContext())
	if err != nil {
		return errDomain(c, err)
	}
	return c.Status(status).JSON(newSessionView(st))
}

// GetSessionHandler returns the full session state.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderSession(c, deps, fiber.StatusOK)
	}
}

// SetFiltersHandler replaces the session filters.
func SetFiltersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f domain.Filters
		if err := c.BodyParser(&f); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Session.SetFilters(f); err != nil {
			return errDomain(c, err)
		}
		return renderSession(c, deps, fiber.StatusOK)
	}
}

type selectRequest struct {
	ID string `json:"id"`
}

// SelectHandler selects a restroom by id.
func SelectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req selectRequest
		if err := c.BodyParser(&req); err != nil || req.ID == "" {
			return errBadRequest(c, "id is required")
		}
		r, err := deps.Session.Select(c.UserContext(), req.ID)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(newRestroomView(*r, nil))
	}
}

// ClearSelectionHandler drops the selection.
func ClearSelectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Session.ClearSelection()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SetRegionHandler applies a map pan or zoom.
func SetRegionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var r domain.Region
		if err := c.BodyParser(&r); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Session.SetRegion(r); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(deps.Session.Region())
	}
}

// ModalHandler opens or cancels one of the session forms. action is "open"
// or "cancel".
func ModalHandler(deps *Dependencies, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := domain.Modal(c.Params("modal"))
		var err error
		switch action {
		case "open":
			err = deps.Session.OpenModal(m)
		case "cancel":
			err = deps.Session.CancelModal(m)
		default:
			return errNotFound(c, "unknown modal action")
		}
		if err != nil {
			return errDomain(c, err)
		}
		return renderSession(c, deps, fiber.StatusOK)
	}
}

// UpdateCheckInHandler replaces the check-in form answers.
func UpdateCheckInHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in domain.CheckIn
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Session.UpdateCheckIn(in); err != nil {
			return errDomain(c, err)
		}
		return renderSession(c, deps, fiber.StatusOK)
	}
}

// SubmitCheckInHandler checks in the selected restroom.
func SubmitCheckInHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		updated, err := deps.Session.SubmitCheckIn(c.UserContext())
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(newRestroomView(*updated, nil))
	}
}

// UpdateDraftHandler replaces the add-form fields.
func UpdateDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var d domain.Draft
		if err := c.BodyParser(&d); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Session.UpdateDraft(d); err != nil {
			return errDomain(c, err)
		}
		return renderSession(c, deps, fiber.StatusOK)
	}
}

// photoRequest carries the outcome of a client-side photo pick.
type photoRequest struct {
	Granted  bool `json:"granted"`
	Selected bool `json:"selected"`
}

// AttachPhotoHandler runs the photo capability. With a body the client's
// reported outcome is used, otherwise the session's own picker.
func AttachPhotoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			attached bool
			err      error
		)
		if len(c.Body()) > 0 {
			var req photoRequest
			if perr := c.BodyParser(&req); perr != nil {
				return errBadRequest(c, "invalid request body")
			}
			attached, err = deps.Session.AttachPhotoWith(c.UserContext(), device.ReportedPhoto{Granted: req.Granted, Selected: req.Selected})
		} else {
			attached, err = deps.Session.AttachPhoto(c.UserContext())
		}
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(fiber.Map{"photo_attached": attached})
	}
}

// SubmitAddHandler creates a restroom from the draft.
func SubmitAddHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		created, err := deps.Session.SubmitAdd(c.UserContext())
		if err != nil {
			return errDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(newRestroomView(*created, nil))
	}
}

// EmergencyHandler selects the best matching restroom.
func EmergencyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		best, err := deps.Session.Emergency(c.UserContext())
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(newRestroomView(*best, deps.Session.Position()))
	}
}

// locateRequest carries the outcome of a client-side geolocation prompt.
type locateRequest struct {
	Granted  bool             `json:"granted"`
	Position *domain.GeoPoint `json:"position"`
}

// LocateHandler recentres the map on the device position. With a body the
// client's reported position is used, otherwise the configured locator.
func LocateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			region domain.Region
			err    error
		)
		if len(c.Body()) > 0 {
			var req locateRequest
			if perr := c.BodyParser(&req); perr != nil {
				return errBadRequest(c, "invalid request body")
			}
			region, err = deps.Session.LocateMeWith(c.UserContext(), device.ReportedLocator{Granted: req.Granted, Position: req.Position})
		} else {
			region, err = deps.Session.LocateMe(c.UserContext())
		}
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(region)
	}
}

// NavigateHandler hands the selected restroom to the external map app.
func NavigateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := deps.Session.Navigate(c.UserContext())
		if err != nil {
			return errDomain(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(newRestroomView(*r, nil))
	}
}

type reportRequest struct {
	Message string `json:"message"`
}

// ReportHandler flags the selected restroom for review. The body and its
// message are optional.
func ReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reportRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		report, err := deps.Session.Report(c.UserContext(), req.Message)
		if err != nil {
			return errDomain(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(report)
	}
}

// DrainNoticesHandler returns and clears pending notices.
func DrainNoticesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		notices := deps.Session.DrainNotices()
		if notices == nil {
			notices = []domain.Notice{}
		}
		return c.JSON(notices)
	}
}
