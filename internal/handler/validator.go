package handler

import (
    "errors"
    "fmt"
    "net/http"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo.Validator.  Failures
// become 400 responses naming every offending field.
type Validator struct {
    v *validator.Validate
}

func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    // report json names instead of Go field names
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
    err := cv.v.Struct(i)
    if err == nil {
        return nil
    }
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) {
        return echo.NewHTTPError(http.StatusBadRequest, err.Error())
    }
    msgs := make([]string, 0, len(verrs))
    for _, fe := range verrs {
        if fe.Param() != "" {
            msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
        } else {
            msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
        }
    }
    return echo.NewHTTPError(http.StatusBadRequest, "invalid request: "+strings.Join(msgs, "; "))
}
