package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-reservations/internal/handler"
	"github.com/iliyamo/travel-reservations/internal/middleware"
	"github.com/iliyamo/travel-reservations/internal/model"
)

// AdminHandlers groups the handlers mounted under /v1/admin.
type AdminHandlers struct {
	Reservations *handler.AdminReservationHandler
	Stats        *handler.AdminStatsHandler
	Inventory    *handler.AdminInventoryHandler
}

// RegisterAdmin mounts the ADMIN API.  Nothing here is cached: admins must
// see inventory as it is.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		limit,
	)

	g.GET("/reservations", h.Reservations.List)
	g.PATCH("/reservations/flight/:id/cancel", h.Reservations.CancelFlight)
	g.PATCH("/reservations/hotel/:id/cancel", h.Reservations.CancelHotel)
	g.DELETE("/reservations/flight/:id", h.Reservations.DeleteFlight)
	g.DELETE("/reservations/hotel/:id", h.Reservations.DeleteHotel)

	g.GET("/stats/reservations", h.Stats.Reservations)

	g.GET("/flights", h.Inventory.ListFlights)
	g.POST("/flights", h.Inventory.CreateFlight)
	g.PUT("/flights/:id", h.Inventory.UpdateFlight)
	g.DELETE("/flights/:id", h.Inventory.DeleteFlight)

	g.GET("/hotels", h.Inventory.ListHotels)
	g.POST("/hotels", h.Inventory.CreateHotel)
	g.PUT("/hotels/:id", h.Inventory.UpdateHotel)
	g.DELETE("/hotels/:id", h.Inventory.DeleteHotel)
}
