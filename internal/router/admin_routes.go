package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-hub/internal/handler"
	"github.com/iliyamo/booking-hub/internal/middleware"
	"github.com/iliyamo/booking-hub/internal/model"
)

// RegisterAdmin registers the cross-user booking endpoints. They require
// the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/bookings", h.AdminList)
	g.DELETE("/bookings/:id", h.AdminDelete)
}
