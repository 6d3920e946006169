package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// AdminStatsHandler serves the reservation report.
type AdminStatsHandler struct {
    Stats Stats
}

func NewAdminStatsHandler(s Stats) *AdminStatsHandler { return &AdminStatsHandler{Stats: s} }

// Reservations handles GET /v1/admin/stats/reservations?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Both days are inclusive.  Omitting both reports on the last 30 days.
func (h *AdminStatsHandler) Reservations(c echo.Context) error {
    rawFrom, rawTo := c.QueryParam("from"), c.QueryParam("to")

    to := time.Now().UTC()
    from := to.AddDate(0, 0, -29)
    if rawFrom != "" || rawTo != "" {
        var errFrom, errTo error
        from, errFrom = time.Parse(dateLayout, rawFrom)
        to, errTo = time.Parse(dateLayout, rawTo)
        if errFrom != nil || errTo != nil {
            return echo.NewHTTPError(http.StatusBadRequest, "from and to must both be YYYY-MM-DD")
        }
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    rep, err := h.Stats.Reservations(ctx, from, to)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, rep)
}
