package middleware

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/travel-reservations/internal/service"
)

// StatusFor maps a business error kind to its HTTP status.
func StatusFor(kind service.ErrorKind) int {
    switch kind {
    case service.KindNotFound:
        return http.StatusNotFound
    case service.KindInvalidRequest, service.KindInvalidRoute, service.KindInvalidSchedule:
        return http.StatusBadRequest
    default:
        return http.StatusConflict
    }
}

// ErrorHandler renders every error as {"error": message, "code": kind}.
// Business errors carry their kind; echo errors keep their status; anything
// else is an opaque 500 and is logged.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }

        code := http.StatusInternalServerError
        body := echo.Map{"error": "internal server error", "code": "INTERNAL"}

        var se *service.Error
        var he *echo.HTTPError
        switch {
        case errors.As(err, &se):
            code = StatusFor(se.Kind)
            body = echo.Map{"error": se.Message, "code": string(se.Kind)}
        case errors.As(err, &he):
            code = he.Code
            msg, ok := he.Message.(string)
            if !ok {
                msg = http.StatusText(he.Code)
            }
            body = echo.Map{"error": msg, "code": httpCode(he.Code)}
        default:
            log.Error("unhandled error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
        }

        if c.Request().Method == http.MethodHead {
            _ = c.NoContent(code)
            return
        }
        _ = c.JSON(code, body)
    }
}

func httpCode(status int) string {
    switch status {
    case http.StatusBadRequest:
        return "INVALID_REQUEST"
    case http.StatusUnauthorized:
        return "UNAUTHORIZED"
    case http.StatusForbidden:
        return "FORBIDDEN"
    case http.StatusNotFound:
        return "NOT_FOUND"
    case http.StatusMethodNotAllowed:
        return "METHOD_NOT_ALLOWED"
    case http.StatusTooManyRequests:
        return "TOO_MANY_REQUESTS"
    }
    return "HTTP_ERROR"
}
