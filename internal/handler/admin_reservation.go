package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/travel-reservations/internal/service"
)

// AdminReservationHandler exposes every reservation to administrators.
type AdminReservationHandler struct {
    Reservations AdminReservations
}

func NewAdminReservationHandler(r AdminReservations) *AdminReservationHandler {
    return &AdminReservationHandler{Reservations: r}
}

// List handles GET /v1/admin/reservations.
func (h *AdminReservationHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    rows, err := h.Reservations.List(ctx)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rows, "total": len(rows)})
}

func (h *AdminReservationHandler) CancelFlight(c echo.Context) error {
    return h.cancel(c, h.Reservations.CancelFlight)
}

func (h *AdminReservationHandler) CancelHotel(c echo.Context) error {
    return h.cancel(c, h.Reservations.CancelHotel)
}

func (h *AdminReservationHandler) cancel(c echo.Context, fn func(context.Context, uint64) (*service.ReservationView, error)) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    v, err := fn(ctx, id)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, v)
}

func (h *AdminReservationHandler) DeleteFlight(c echo.Context) error {
    return h.delete(c, h.Reservations.DeleteFlight)
}

func (h *AdminReservationHandler) DeleteHotel(c echo.Context) error {
    return h.delete(c, h.Reservations.DeleteHotel)
}

func (h *AdminReservationHandler) delete(c echo.Context, fn func(context.Context, uint64) error) error {
    id, err := pathID(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := fn(ctx, id); err != nil {
        return err
    }
    return c.NoContent(http.StatusNoContent)
}
