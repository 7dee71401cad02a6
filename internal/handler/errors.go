package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/booking-hub/internal/model"
)

// statusFor maps booking error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInsufficientInventory),
		errors.Is(err, model.ErrAlreadyCancelled),
		errors.Is(err, model.ErrCancellationClosed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// codeFor is the machine-readable error code sent next to the message.
func codeFor(err error) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, model.ErrForbidden):
		return "forbidden"
	case errors.Is(err, model.ErrInsufficientInventory):
		return "insufficient_inventory"
	case errors.Is(err, model.ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, model.ErrCancellationClosed):
		return "cancellation_closed"
	}
	return "internal_error"
}

func (h *BookingHandler) fail(c echo.Context, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("booking request failed", zap.String("path", c.Path()), zap.Error(err))
		msg = "internal error"
	}
	return c.JSON(status, echo.Map{"error": msg, "code": codeFor(err)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": "invalid_request"})
}
