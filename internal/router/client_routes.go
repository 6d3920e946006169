package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-reservations/internal/handler"
	"github.com/iliyamo/travel-reservations/internal/middleware"
	"github.com/iliyamo/travel-reservations/internal/model"
)

// ClientHandlers groups the handlers mounted under /v1/client.
type ClientHandlers struct {
	Search       *handler.SearchHandler
	Reservations *handler.ClientReservationHandler
	Payments     *handler.ClientPaymentHandler
}

// RegisterClient mounts the CLIENT API.  limit runs after authentication so
// buckets are keyed by user; cache wraps only the search endpoints.
func RegisterClient(e *echo.Echo, h ClientHandlers, jwtSecret string, limit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/client",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleClient),
		limit,
	)

	g.GET("/flights", h.Search.Flights, cache)
	g.GET("/flights/:id", h.Search.Flight, cache)
	g.GET("/hotels", h.Search.Hotels, cache)
	g.GET("/hotels/:id", h.Search.Hotel, cache)

	g.POST("/reservations/flights", h.Reservations.BookFlight)
	g.POST("/reservations/hotels", h.Reservations.BookHotel)
	g.GET("/reservations", h.Reservations.List)
	g.PATCH("/reservations/flight/:id/cancel", h.Reservations.CancelFlight)
	g.PATCH("/reservations/hotel/:id/cancel", h.Reservations.CancelHotel)

	g.POST("/payments/flight/:id", h.Payments.PayFlight)
	g.POST("/payments/hotel/:id", h.Payments.PayHotel)
}
