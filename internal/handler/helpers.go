package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/travel-reservations/internal/middleware"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

// dateLayout is the wire format of calendar dates (check-in, stats range).
const dateLayout = "2006-01-02"

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bind decodes the body into req and runs the registered validator.
func bind(c echo.Context, req interface{}) error {
    if err := c.Bind(req); err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
    }
    return c.Validate(req)
}

// callerID returns the authenticated user id set by JWTAuth.
func callerID(c echo.Context) (uint64, error) {
    id, ok := middleware.UserID(c)
    if !ok {
        return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
    }
    return id, nil
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
    }
    return id, nil
}

// page reads page/page_size query parameters; invalid values fall back to
// the repository defaults.
func page(c echo.Context) (int, int) {
    p, _ := strconv.Atoi(c.QueryParam("page"))
    size, _ := strconv.Atoi(c.QueryParam("page_size"))
    return p, size
}

// listResponse is the envelope of paginated search results.
type listResponse struct {
    Items    interface{} `json:"items"`
    Total    int64       `json:"total"`
    Page     int         `json:"page"`
    PageSize int         `json:"page_size"`
}

func newListResponse(items interface{}, total int64, p, size int) listResponse {
    if p < 1 {
        p = 1
    }
    if size < 1 {
        size = 20
    }
    if size > 100 {
        size = 100
    }
    return listResponse{Items: items, Total: total, Page: p, PageSize: size}
}
