package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/iliyamo/event-seat-inventory/internal/handler"    // handlers binding HTTP to the reservation core
	"github.com/iliyamo/event-seat-inventory/internal/middleware" // JWT and role middleware for admin routes
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated read-only endpoints:
// seat availability and booking payment details.  Both are point-in-time
// projections, so they run behind the optional redis response cache
// (pass nil to disable).
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, b *handler.BookingHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/events/:code/seats", ev.GetAvailableSeats)
	g.GET("/bookings/payment/details/:id", b.GetPaymentDetails)
}

// RegisterBooking registers the checkout flow under /v1/bookings.  The
// optional rate limiter shields the hold/confirm hot path (pass nil to
// disable).
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, ratelimit echo.MiddlewareFunc) {
	g := e.Group("/v1/bookings")
	if ratelimit != nil {
		g.Use(ratelimit)
	}
	g.POST("/hold", b.HoldSeats)
	g.POST("/confirm", b.ConfirmBooking)
	g.POST("/payment/process", b.ProcessPayment)
	g.POST("/cancel", b.CancelBooking)
}

// RegisterAdmin registers the token endpoint and the JWT-protected
// administration routes: event creation, seat insertion and seat price
// management.  Admin routes require a valid access token carrying the
// ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AuthHandler, ev *handler.EventHandler, p *handler.PriceHandler, jwtSecret string) {
	e.POST("/v1/auth/token", a.Token)

	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.POST("/events", ev.CreateEvent)
	admin.POST("/seats/insert", ev.InsertSeats)
	admin.POST("/price/set", p.SetSeatPrice)
}
