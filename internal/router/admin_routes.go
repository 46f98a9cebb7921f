package router

import (
	"github.com/labstack/echo/v4"

	"github.com/teereserve/golf-booking/internal/handler"
	"github.com/teereserve/golf-booking/internal/middleware"
	"github.com/teereserve/golf-booking/internal/model"
)

// RegisterAdmin registers the ADMIN-only course, pricing and calendar
// endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Courses ----
	g.POST("/courses", a.CreateCourse)
	g.PUT("/courses/:id", a.UpdateCourse)
	g.DELETE("/courses/:id", a.DeleteCourse)
	g.PUT("/courses/:id/base-product", a.PutBaseProduct)
	g.GET("/courses/:id/base-product", a.GetBaseProduct)

	// ---- Rules ----
	g.GET("/courses/:id/rules", a.ListRules)
	g.POST("/courses/:id/rules", a.CreateRule)
	g.PUT("/rules/:id", a.UpdateRule)
	g.PATCH("/rules/:id", a.ToggleRule) // {"active": false} is the soft delete
	g.DELETE("/rules/:id", a.DeleteRule)
	g.GET("/courses/:id/pricing/preview", a.PreviewPricing)

	// ---- Calendar ----
	g.GET("/courses/:id/seasons", a.ListSeasons)
	g.POST("/courses/:id/seasons", a.CreateSeason)
	g.DELETE("/seasons/:id", a.DeleteSeason)
	g.GET("/courses/:id/time-bands", a.ListTimeBands)
	g.POST("/courses/:id/time-bands", a.CreateTimeBand)
	g.DELETE("/time-bands/:id", a.DeleteTimeBand)
}
