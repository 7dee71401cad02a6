package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-hub/internal/handler"
	"github.com/iliyamo/booking-hub/internal/middleware"
	"github.com/iliyamo/booking-hub/internal/model"
)

// RegisterBookings registers the booking endpoints under /v1. Every route
// requires a valid JWT; limit, when set, throttles the mutating ones.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	var mw []echo.MiddlewareFunc
	if limit != nil {
		mw = append(mw, limit)
	}

	g.POST("", h.Create, mw...)
	g.POST("/movies", h.CreateMovie, mw...)
	g.POST("/events", h.CreateEvent, mw...)
	g.POST("/restaurants", h.CreateRestaurant, mw...)
	g.POST("/validate", h.Validate)

	g.GET("", h.List)
	g.GET("/upcoming", h.Upcoming)
	g.GET("/history", h.History)
	g.GET("/:id", h.Get)

	g.PUT("/:id/cancel", h.Cancel, mw...)
	g.PUT("/:id", h.Update, mw...)
}
