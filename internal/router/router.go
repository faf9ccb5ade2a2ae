package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/eventdesk/doorlist/internal/handler"
	"github.com/eventdesk/doorlist/internal/middleware"
	"github.com/eventdesk/doorlist/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers and
// monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes. Login, refresh and logout
// live unauthenticated under /v1/auth; /v1/me and operator registration
// require a valid access token, and registration is further restricted to
// admins.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// Rotates the refresh token: the presented token is revoked and a new
	// pair is returned.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleRegular))
	auth.GET("/me", a.Me)

	// Only admins can create operator accounts; there is no self-serve
	// signup for a door tool.
	admin := e.Group("/v1/auth")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/register", a.Register)
}

// RegisterTickets registers the ticket entry, lookup and door endpoints.
// Everything here requires an authenticated operator of either role.
func RegisterTickets(e *echo.Echo, t *handler.TicketHandler, d *handler.CheckInHandler, s *handler.StatsHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleRegular))

	// Entry.
	g.POST("/tickets", t.Create)
	g.POST("/tickets/batch", t.CreateBatch)
	g.POST("/tickets/check", t.CheckExisting)

	// Lookup. /tickets?q=...&mode=ticket|name|phone searches; the :number
	// route fetches one ticket.
	g.GET("/tickets", t.Search)
	g.GET("/tickets/:number", t.Get)

	// Door workflow.
	g.POST("/tickets/:number/checkin", d.CheckIn)
	g.POST("/tickets/:number/pay-checkin", d.PayAndCheckIn)
	g.POST("/tickets/:number/payment", d.SetPayment)

	g.GET("/stats", s.Summary)
}

// RegisterNotifications registers the bulk SMS endpoints. Starting a run is
// admin-only; preview and status are open to both roles.
func RegisterNotifications(e *echo.Echo, n *handler.NotifyHandler, jwtSecret string) {
	g := e.Group("/v1/notifications")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleRegular))
	g.GET("/preview", n.Preview)
	g.GET("/:id", n.Get)

	admin := e.Group("/v1/notifications")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("", n.Start)
}
