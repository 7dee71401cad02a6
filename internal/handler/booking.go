package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/booking-hub/internal/booking"
	"github.com/iliyamo/booking-hub/internal/middleware"
	"github.com/iliyamo/booking-hub/internal/model"
)

// BookingService is the part of booking.Service the HTTP layer uses.
type BookingService interface {
	Validate(ctx context.Context, req booking.ReserveRequest) (*booking.Availability, error)
	Reserve(ctx context.Context, who model.Identity, req booking.ReserveRequest) (*model.Booking, error)
	Get(ctx context.Context, who model.Identity, id uint64) (*model.Booking, error)
	Cancel(ctx context.Context, who model.Identity, id uint64) (*model.Booking, error)
	Update(ctx context.Context, who model.Identity, id uint64, r booking.UpdateRequest) (*model.Booking, error)
	Delete(ctx context.Context, who model.Identity, id uint64) error
	ListForUser(ctx context.Context, userID uint64, q booking.ListQuery) (*booking.Page, error)
	ListAll(ctx context.Context, who model.Identity, q booking.ListQuery) (*booking.Page, error)
}

// BookingHandler serves the /v1/bookings endpoints.
type BookingHandler struct {
	svc BookingService
	log *zap.Logger
}

func NewBookingHandler(svc BookingService, log *zap.Logger) *BookingHandler {
	if svc == nil {
		panic("booking service is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{svc: svc, log: log}
}

func bookingID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *BookingHandler) create(c echo.Context, typ model.BookingType) error {
	who, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body reserveBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if typ != "" {
		body.Type = string(typ)
	}
	if err := c.Validate(&body); err != nil {
		return badRequest(c, err.Error())
	}
	b, err := h.svc.Reserve(c.Request().Context(), who, body.toRequest())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": b})
}

// Create handles POST /v1/bookings with booking_type in the body.
func (h *BookingHandler) Create(c echo.Context) error { return h.create(c, "") }

func (h *BookingHandler) CreateMovie(c echo.Context) error { return h.create(c, model.BookingMovie) }

func (h *BookingHandler) CreateEvent(c echo.Context) error { return h.create(c, model.BookingEvent) }

func (h *BookingHandler) CreateRestaurant(c echo.Context) error {
	return h.create(c, model.BookingRestaurant)
}

// Validate handles POST /v1/bookings/validate. Nothing is reserved.
func (h *BookingHandler) Validate(c echo.Context) error {
	var body reserveBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if err := c.Validate(&body); err != nil {
		return badRequest(c, err.Error())
	}
	a, err := h.svc.Validate(c.Request().Context(), body.toRequest())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": a})
}

func (h *BookingHandler) list(c echo.Context, v booking.View) error {
	who, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var p listParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &p); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if err := c.Validate(&p); err != nil {
		return badRequest(c, err.Error())
	}
	page, err := h.svc.ListForUser(c.Request().Context(), who.UserID, p.toQuery(v))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// List handles GET /v1/bookings.
func (h *BookingHandler) List(c echo.Context) error { return h.list(c, booking.ViewAll) }

func (h *BookingHandler) Upcoming(c echo.Context) error { return h.list(c, booking.ViewUpcoming) }

func (h *BookingHandler) History(c echo.Context) error { return h.list(c, booking.ViewHistory) }

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	who, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := bookingID(c)
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	b, err := h.svc.Get(c.Request().Context(), who, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// Cancel handles PUT /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	who, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := bookingID(c)
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	b, err := h.svc.Cancel(c.Request().Context(), who, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// Update handles PUT /v1/bookings/:id.
func (h *BookingHandler) Update(c echo.Context) error {
	who, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := bookingID(c)
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	var body updateBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if err := c.Validate(&body); err != nil {
		return badRequest(c, err.Error())
	}
	b, err := h.svc.Update(c.Request().Context(), who, id, body.toRequest())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// AdminList handles GET /v1/admin/bookings, optionally filtered by user_id.
func (h *BookingHandler) AdminList(c echo.Context) error {
	who, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var p listParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &p); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if err := c.Validate(&p); err != nil {
		return badRequest(c, err.Error())
	}
	q := p.toQuery(booking.ViewAll)
	q.UserID = p.UserID
	page, err := h.svc.ListAll(c.Request().Context(), who, q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// AdminDelete handles DELETE /v1/admin/bookings/:id.
func (h *BookingHandler) AdminDelete(c echo.Context) error {
	who, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := bookingID(c)
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	if err := h.svc.Delete(c.Request().Context(), who, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
