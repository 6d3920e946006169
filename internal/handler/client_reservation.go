package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/travel-reservations/internal/service"
)

// ClientReservationHandler books, lists and cancels the caller's own
// reservations.  Routes run behind JWTAuth and RequireRole(CLIENT).
type ClientReservationHandler struct {
    Bookings Bookings
}

func NewClientReservationHandler(b Bookings) *ClientReservationHandler {
    return &ClientReservationHandler{Bookings: b}
}

type bookFlightReq struct {
    FlightID       uint64  `json:"flight_id" validate:"required"`
    ReturnFlightID *uint64 `json:"return_flight_id" validate:"omitempty,gt=0"`
    Seats          int     `json:"seats" validate:"required,min=1,max=50"`
}

type bookHotelReq struct {
    HotelID  uint64 `json:"hotel_id" validate:"required"`
    CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
    CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
    Rooms    int    `json:"rooms" validate:"required,min=1,max=50"`
}

// BookFlight handles POST /v1/client/reservations/flights.
func (h *ClientReservationHandler) BookFlight(c echo.Context) error {
    uid, err := callerID(c)
    if err != nil {
        return err
    }
    var req bookFlightReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    v, err := h.Bookings.BookFlight(ctx, uid, service.BookFlightInput{
        FlightID:       req.FlightID,
        ReturnFlightID: req.ReturnFlightID,
        Seats:          req.Seats,
    })
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, v)
}

// BookHotel handles POST /v1/client/reservations/hotels.
func (h *ClientReservationHandler) BookHotel(c echo.Context) error {
    uid, err := callerID(c)
    if err != nil {
        return err
    }
    var req bookHotelReq
    if err := bind(c, &req); err != nil {
        return err
    }
    // format already checked by the validator
    in, _ := time.Parse(dateLayout, req.CheckIn)
    out, _ := time.Parse(dateLayout, req.CheckOut)

    ctx, cancel := reqCtx(c)
    defer cancel()
    v, err := h.Bookings.BookHotel(ctx, uid, service.BookHotelInput{
        HotelID:  req.HotelID,
        CheckIn:  in,
        CheckOut: out,
        Rooms:    req.Rooms,
    })
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, v)
}

// List handles GET /v1/client/reservations.
func (h *ClientReservationHandler) List(c echo.Context) error {
    uid, err := callerID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, err := h.Bookings.MyReservations(ctx, uid)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "total": len(items)})
}

// CancelFlight handles PATCH /v1/client/reservations/flight/:id/cancel.
func (h *ClientReservationHandler) CancelFlight(c echo.Context) error {
    return h.cancel(c, h.Bookings.CancelFlight)
}

// CancelHotel handles PATCH /v1/client/reservations/hotel/:id/cancel.
func (h *ClientReservationHandler) CancelHotel(c echo.Context) error {
    return h.cancel(c, h.Bookings.CancelHotel)
}

type clientCancelFunc func(ctx context.Context, clientID, id uint64) (*service.ReservationView, error)

func (h *ClientReservationHandler) cancel(c echo.Context, fn clientCancelFunc) error {
    uid, err := callerID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    v, err := fn(ctx, uid, id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, v)
}
