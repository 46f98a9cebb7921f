package router

import (
	"github.com/labstack/echo/v4"

	"github.com/teereserve/golf-booking/internal/handler"
	"github.com/teereserve/golf-booking/internal/middleware"
	"github.com/teereserve/golf-booking/internal/model"
)

// RegisterBooking registers tee-time availability (public) and the golfer
// booking endpoints (JWT, GOLFER or ADMIN).
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	e.GET("/v1/tee-times", b.TeeTimes, mw...)

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleGolfer, model.RoleAdmin),
	)
	g.POST("/bookings", b.Create)
	g.GET("/my-bookings", b.Mine)
}
