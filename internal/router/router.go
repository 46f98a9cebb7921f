package router // route registration for the HTTP API

import (
	"github.com/labstack/echo/v4"

	"github.com/teereserve/golf-booking/internal/handler"
	"github.com/teereserve/golf-booking/internal/middleware"
	"github.com/teereserve/golf-booking/internal/model"
)

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers /v1/auth and the authenticated /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)              // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleGolfer))
}

// RegisterPricing registers the public price endpoints behind the given
// middleware (cache and rate limiter).  min-price is served both with and
// without the /v1 prefix.
func RegisterPricing(e *echo.Echo, p *handler.PricingHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/pricing/min-price", p.MinPrice, mw...)
	v1 := e.Group("/v1/pricing", mw...)
	v1.GET("/min-price", p.MinPrice)
	v1.GET("/quote", p.Quote)
}

// RegisterPublic registers unauthenticated course browsing.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1/courses", mw...)
	g.GET("", p.ListCourses)
	g.GET("/:id", p.GetCourse)
}
