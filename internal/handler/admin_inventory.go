package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/travel-reservations/internal/repository"
    "github.com/iliyamo/travel-reservations/internal/service"
)

// AdminInventoryHandler manages flights and hotels.
type AdminInventoryHandler struct {
    Inventory Inventory
}

func NewAdminInventoryHandler(inv Inventory) *AdminInventoryHandler {
    return &AdminInventoryHandler{Inventory: inv}
}

type flightReq struct {
    FlightNumber   string    `json:"flight_number" validate:"required,max=16"`
    Airline        string    `json:"airline" validate:"required,max=80"`
    Origin         string    `json:"origin" validate:"required,max=8"`
    Destination    string    `json:"destination" validate:"required,max=8"`
    DepartureAt    time.Time `json:"departure_at"`
    ArrivalAt      time.Time `json:"arrival_at"`
    BasePriceCents int64     `json:"base_price_cents" validate:"gt=0"`
    AvailableSeats int       `json:"available_seats" validate:"min=0"`
    Status         string    `json:"status" validate:"omitempty,oneof=AVAILABLE FULL CANCELED"`
}

func (r flightReq) input() service.FlightInput {
    return service.FlightInput{
        FlightNumber:   r.FlightNumber,
        Airline:        r.Airline,
        Origin:         r.Origin,
        Destination:    r.Destination,
        DepartureAt:    r.DepartureAt,
        ArrivalAt:      r.ArrivalAt,
        BasePriceCents: r.BasePriceCents,
        AvailableSeats: r.AvailableSeats,
        Status:         r.Status,
    }
}

type hotelReq struct {
    Name               string   `json:"name" validate:"required,max=120"`
    Address            string   `json:"address" validate:"required,max=255"`
    City               string   `json:"city" validate:"required,max=80"`
    Country            string   `json:"country" validate:"required,max=80"`
    Stars              int      `json:"stars" validate:"min=1,max=5"`
    PricePerNightCents int64    `json:"price_per_night_cents" validate:"gt=0"`
    TotalRooms         int      `json:"total_rooms" validate:"min=1"`
    AvailableRooms     int      `json:"available_rooms" validate:"min=0"`
    Description        string   `json:"description" validate:"max=2000"`
    Amenities          []string `json:"amenities" validate:"omitempty,max=30,dive,required,max=60"`
}

func (r hotelReq) input() service.HotelInput {
    return service.HotelInput{
        Name:               r.Name,
        Address:            r.Address,
        City:               r.City,
        Country:            r.Country,
        Stars:              r.Stars,
        PricePerNightCents: r.PricePerNightCents,
        TotalRooms:         r.TotalRooms,
        AvailableRooms:     r.AvailableRooms,
        Description:        r.Description,
        Amenities:          r.Amenities,
    }
}

// ListFlights handles GET /v1/admin/flights (same filters as client search).
func (h *AdminInventoryHandler) ListFlights(c echo.Context) error {
    p, size := page(c)
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, total, err := h.Inventory.ListFlights(ctx, repository.FlightFilter{
        Origin:      c.QueryParam("origin"),
        Destination: c.QueryParam("destination"),
        Page:        p,
        PageSize:    size,
    })
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, newListResponse(items, total, p, size))
}

func (h *AdminInventoryHandler) CreateFlight(c echo.Context) error {
    var req flightReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    f, err := h.Inventory.CreateFlight(ctx, req.input())
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, f)
}

func (h *AdminInventoryHandler) UpdateFlight(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    var req flightReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    f, err := h.Inventory.UpdateFlight(ctx, id, req.input())
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, f)
}

func (h *AdminInventoryHandler) DeleteFlight(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Inventory.DeleteFlight(ctx, id); err != nil {
        return err
    }
    return c.NoContent(http.StatusNoContent)
}

// ListHotels handles GET /v1/admin/hotels.
func (h *AdminInventoryHandler) ListHotels(c echo.Context) error {
    p, size := page(c)
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, total, err := h.Inventory.ListHotels(ctx, repository.HotelFilter{
        City:     c.QueryParam("city"),
        Country:  c.QueryParam("country"),
        Page:     p,
        PageSize: size,
    })
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, newListResponse(items, total, p, size))
}

func (h *AdminInventoryHandler) CreateHotel(c echo.Context) error {
    var req hotelReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    hotel, err := h.Inventory.CreateHotel(ctx, req.input())
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, hotel)
}

func (h *AdminInventoryHandler) UpdateHotel(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    var req hotelReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    hotel, err := h.Inventory.UpdateHotel(ctx, id, req.input())
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, hotel)
}

func (h *AdminInventoryHandler) DeleteHotel(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Inventory.DeleteHotel(ctx, id); err != nil {
        return err
    }
    return c.NoContent(http.StatusNoContent)
}
