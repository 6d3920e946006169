package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// ClientPaymentHandler pays pending reservations with the mocked gateway.
type ClientPaymentHandler struct {
    Payments Payments
}

func NewClientPaymentHandler(p Payments) *ClientPaymentHandler { return &ClientPaymentHandler{Payments: p} }

type payReq struct {
    Method string `json:"method" validate:"required,max=32"`
}

// PayFlight handles POST /v1/client/payments/flight/:id.
func (h *ClientPaymentHandler) PayFlight(c echo.Context) error {
    uid, err := callerID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c)
    if err != nil {
        return err
    }
    var req payReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    p, err := h.Payments.PayFlight(ctx, uid, id, req.Method)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, p)
}

// PayHotel handles POST /v1/client/payments/hotel/:id.
func (h *ClientPaymentHandler) PayHotel(c echo.Context) error {
    uid, err := callerID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c)
    if err != nil {
        return err
    }
    var req payReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    p, err := h.Payments.PayHotel(ctx, uid, id, req.Method)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, p)
}
