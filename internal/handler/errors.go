package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-inventory/internal/service"
)

// writeServiceError maps a coordinator/availability error to an HTTP
// response.  Every domain error kind keeps its identity; only unknown
// errors collapse into a 500.
func writeServiceError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrInvalidArgument):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrEventNotFound),
        errors.Is(err, service.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrSeatUnavailable),
        errors.Is(err, service.ErrSeatLocked),
        errors.Is(err, service.ErrAlreadyPaid),
        errors.Is(err, service.ErrAlreadyCancelled):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrLeaseExpired):
        return c.JSON(http.StatusGone, echo.Map{"error": err.Error()})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
