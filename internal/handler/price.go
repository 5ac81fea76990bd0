package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-inventory/internal/service"
)

// PriceHandler exposes seat price administration.
type PriceHandler struct {
    Coordinator *service.Coordinator
}

// NewPriceHandler constructs a PriceHandler.
func NewPriceHandler(coordinator *service.Coordinator) *PriceHandler {
    if coordinator == nil {
        panic("nil coordinator passed to NewPriceHandler")
    }
    return &PriceHandler{Coordinator: coordinator}
}

// SetSeatPrice handles POST /v1/admin/price/set.  Upserts the per-seat
// price of an event; bookings created earlier keep their snapshotted
// price.
func (h *PriceHandler) SetSeatPrice(c echo.Context) error {
    var body struct {
        EventID   string `json:"eventId"`
        SeatPrice int64  `json:"seatPrice"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    res, err := h.Coordinator.SetSeatPrice(c.Request().Context(), body.EventID, body.SeatPrice)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}
