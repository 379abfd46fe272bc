package handler

import (
    "errors"
    "net/http"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/citycat-users/internal/apperror"
    "github.com/iliyamo/citycat-users/internal/logging"
)

// statusOf maps a domain error kind to the HTTP status and the message shown
// to the caller. Login failures share one message so the response does not
// reveal whether the email exists.
func statusOf(err error) (int, string) {
    switch apperror.KindOf(err) {
    case apperror.KindEmailDuplication:
        return http.StatusConflict, "email already exists"
    case apperror.KindUserNotFound:
        return http.StatusNotFound, "user not found"
    case apperror.KindAccessDenied:
        return http.StatusForbidden, "access denied"
    case apperror.KindLoginFailWithNotFoundEmail, apperror.KindEncoderFail:
        return http.StatusUnauthorized, "invalid credentials"
    case apperror.KindInvalidToken:
        return http.StatusUnauthorized, "unauthorized"
    case apperror.KindValidation:
        return http.StatusBadRequest, err.Error()
    default:
        return http.StatusInternalServerError, "internal error"
    }
}

// respondError writes err as a JSON error body. Server-side failures are
// logged with the operation name; their details never reach the client.
func respondError(c echo.Context, log logging.Logger, op string, err error) error {
    status, msg := statusOf(err)
    if status >= http.StatusInternalServerError {
        log.Error(c.Request().Context(), "request failed", "op", op, "status", status, "error", err)
    } else {
        log.Debug(c.Request().Context(), "request rejected", "op", op, "status", status, "error", err)
    }
    return c.JSON(status, echo.Map{"error": msg})
}

// respondInvalid writes a 400 for a request that failed validation, listing
// the offending fields when available.
func respondInvalid(c echo.Context, err error) error {
    var fields validation.Errors
    if errors.As(err, &fields) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
    }
    return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

func invalidBody(c echo.Context) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}
