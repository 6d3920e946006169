package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/travel-reservations/internal/repository"
)

// SearchHandler serves flight and hotel search to clients.  Responses may
// be served from the Redis cache and can lag behind bookings briefly; the
// booking transaction is the only authority on availability.
type SearchHandler struct {
    Inventory Inventory
}

func NewSearchHandler(inv Inventory) *SearchHandler { return &SearchHandler{Inventory: inv} }

// Flights handles GET /v1/client/flights?origin=&destination=&date=.
func (h *SearchHandler) Flights(c echo.Context) error {
    p, size := page(c)
    f := repository.FlightFilter{
        Origin:      strings.ToUpper(strings.TrimSpace(c.QueryParam("origin"))),
        Destination: strings.ToUpper(strings.TrimSpace(c.QueryParam("destination"))),
        Page:        p,
        PageSize:    size,
    }
    if raw := c.QueryParam("date"); raw != "" {
        d, err := time.Parse(dateLayout, raw)
        if err != nil {
            return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
        }
        f.DepartureDate = &d
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    items, total, err := h.Inventory.ListFlights(ctx, f)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, newListResponse(items, total, p, size))
}

// Hotels handles GET /v1/client/hotels?city=&country=.
func (h *SearchHandler) Hotels(c echo.Context) error {
    p, size := page(c)
    f := repository.HotelFilter{
        City:     strings.TrimSpace(c.QueryParam("city")),
        Country:  strings.TrimSpace(c.QueryParam("country")),
        Page:     p,
        PageSize: size,
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, total, err := h.Inventory.ListHotels(ctx, f)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, newListResponse(items, total, p, size))
}

// Flight handles GET /v1/client/flights/:id.
func (h *SearchHandler) Flight(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    f, err := h.Inventory.GetFlight(ctx, id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, f)
}

// Hotel handles GET /v1/client/hotels/:id.
func (h *SearchHandler) Hotel(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    hotel, err := h.Inventory.GetHotel(ctx, id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, hotel)
}
