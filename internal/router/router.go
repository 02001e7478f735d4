package router

import (
	"github.com/labstack/echo/v4"

	"github.com/dareyes/restaurant-management/internal/handler"
	"github.com/dareyes/restaurant-management/internal/middleware"
)

// Handlers bundles every handler the router wires.
type Handlers struct {
	Auth      *handler.AuthHandler
	Products  *handler.ProductHandler
	Tables    *handler.TableHandler
	Users     *handler.UserAdminHandler
	Dashboard *handler.DashboardHandler
}

// Register wires all application routes.  authn is the request
// authenticator middleware, limiter the credential-endpoint rate limiter
// (pass-through when Redis is absent).
func Register(e *echo.Echo, h Handlers, authn *middleware.Authenticator, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	// Credential endpoints: no session required, rate limited.
	authGroup := e.Group("/api/auth", limiter)
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh-token", h.Auth.RefreshToken)

	// Session endpoints: authentication required.
	session := e.Group("/api/auth", authn.Middleware())
	session.POST("/logout", h.Auth.Logout)
	session.POST("/logoutAll", h.Auth.LogoutAll)
	session.GET("/profile", h.Auth.Profile)

	api := e.Group("/api", authn.Middleware())

	// Menu: staff read, admin/supervisor write.
	products := api.Group("/products")
	products.GET("", h.Products.List, middleware.Staff)
	products.GET("/:id", h.Products.Get, middleware.Staff)
	products.POST("", h.Products.Create, middleware.Supervisors)
	products.PUT("/:id", h.Products.Update, middleware.Supervisors)
	products.DELETE("/:id", h.Products.Delete, middleware.Supervisors)

	// Tables: staff read, waitstaff update, supervisors create.
	tables := api.Group("/tables")
	tables.GET("", h.Tables.List, middleware.Staff)
	tables.POST("", h.Tables.Create, middleware.Supervisors)
	tables.PATCH("/:id/status", h.Tables.UpdateStatus, middleware.Waitstaff)

	// User administration: admin only.
	admin := api.Group("/admin", middleware.AdminOnly)
	admin.GET("/users", h.Users.List)
	admin.PATCH("/users/:id/role", h.Users.UpdateRole)
	admin.DELETE("/users/:id", h.Users.Delete)

	// Dashboard aggregates: staff.
	api.GET("/dashboard/summary", h.Dashboard.Summary, middleware.Staff)
}
