package handler

import (
    "net/http" // HTTP status codes
    "strconv"  // parsing path parameters
    "time"     // request timestamps

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/event-seat-inventory/internal/service" // reservation core
)

// BookingHandler exposes the hold → confirm → pay → cancel flow over
// HTTP.  All state transitions are delegated to the reservation
// coordinator; handlers only bind input, call the coordinator and map
// the returned error kind to a status code.
type BookingHandler struct {
    Coordinator *service.Coordinator
}

// NewBookingHandler constructs a BookingHandler.  The coordinator must
// be non-nil.
func NewBookingHandler(coordinator *service.Coordinator) *BookingHandler {
    if coordinator == nil {
        panic("nil coordinator passed to NewBookingHandler")
    }
    return &BookingHandler{Coordinator: coordinator}
}

// HoldSeats handles POST /v1/bookings/hold.  The request body carries
// the event code, the seat labels and the event date/duration.  On
// success every seat is leased for ten minutes; if any seat is booked
// or already leased, nothing is created and 409 is returned.
func (h *BookingHandler) HoldSeats(c echo.Context) error {
    var body struct {
        EventID   string    `json:"eventId"`
        Seats     []string  `json:"seats"`
        EventDate time.Time `json:"eventDate"`
        Duration  uint32    `json:"duration"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    res, err := h.Coordinator.HoldSeats(c.Request().Context(), body.EventID, body.Seats, body.EventDate, body.Duration)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// ConfirmBooking handles POST /v1/bookings/confirm.  Every requested
// seat must still be under the caller's active lease; the response
// carries the new booking id and its price breakdown with payment
// still pending.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
    var body struct {
        EventID   string    `json:"eventId"`
        Seats     []string  `json:"seats"`
        UserID    string    `json:"userId"`
        EventDate time.Time `json:"eventDate"`
        Duration  uint32    `json:"duration"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    res, err := h.Coordinator.ConfirmBooking(c.Request().Context(), body.EventID, body.Seats, body.UserID, body.EventDate, body.Duration)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// ProcessPayment handles POST /v1/bookings/payment/process.  Payment
// confirmation is an external signal; the handler only relays it to
// the coordinator, which confirms the booking and re-leases its seats.
func (h *BookingHandler) ProcessPayment(c echo.Context) error {
    var body struct {
        BookingID uint64    `json:"bookingId"`
        PaymentID string    `json:"paymentId"`
        EventDate time.Time `json:"eventDate"`
        Duration  uint32    `json:"duration"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    res, err := h.Coordinator.ProcessPayment(c.Request().Context(), body.BookingID, body.PaymentID, body.EventDate, body.Duration)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// GetPaymentDetails handles GET /v1/bookings/payment/details/:id.
func (h *BookingHandler) GetPaymentDetails(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    res, err := h.Coordinator.GetBookingPaymentDetails(c.Request().Context(), id)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// CancelBooking handles POST /v1/bookings/cancel.  Cancelling twice
// returns 409 on the second call and leaves state unchanged.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
    var body struct {
        BookingID uint64    `json:"bookingId"`
        EventDate time.Time `json:"eventDate"`
        Duration  uint32    `json:"duration"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    res, err := h.Coordinator.CancelBooking(c.Request().Context(), body.BookingID, body.EventDate, body.Duration)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}
