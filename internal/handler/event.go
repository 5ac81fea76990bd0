package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-inventory/internal/service"
)

// EventHandler exposes event administration (create, seat insertion)
// and the public availability endpoint.
type EventHandler struct {
    Coordinator  *service.Coordinator
    Availability *service.AvailabilityEngine
}

// NewEventHandler constructs an EventHandler.  Both dependencies must
// be non-nil.
func NewEventHandler(coordinator *service.Coordinator, availability *service.AvailabilityEngine) *EventHandler {
    if coordinator == nil || availability == nil {
        panic("nil dependency passed to NewEventHandler")
    }
    return &EventHandler{Coordinator: coordinator, Availability: availability}
}

// CreateEvent handles POST /v1/admin/events.  The event code is
// optional; a random one is generated when absent.
func (h *EventHandler) CreateEvent(c echo.Context) error {
    var body struct {
        Code     string    `json:"code"`
        Name     string    `json:"name"`
        City     string    `json:"city"`
        Date     time.Time `json:"date"`
        Duration uint32    `json:"duration"`
        Seats    []string  `json:"seats"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    ev, err := h.Coordinator.CreateEvent(c.Request().Context(), body.Code, body.Name, body.City, body.Date, body.Duration, body.Seats)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "eventId":    ev.Code,
        "name":       ev.Name,
        "city":       ev.City,
        "date":       ev.StartsAt,
        "duration":   ev.DurationMin,
        "totalSeats": len(ev.Seats),
    })
}

// InsertSeats handles POST /v1/admin/seats/insert.  New labels are
// unioned into the event's seat set; the event date and duration are
// overwritten with the supplied values regardless of how many labels
// were actually new.
func (h *EventHandler) InsertSeats(c echo.Context) error {
    var body struct {
        EventID   string    `json:"eventId"`
        Seats     []string  `json:"seats"`
        EventDate time.Time `json:"eventDate"`
        Duration  uint32    `json:"duration"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    res, err := h.Coordinator.InsertSeats(c.Request().Context(), body.EventID, body.Seats, body.EventDate, body.Duration)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// GetAvailableSeats handles GET /v1/events/:code/seats.  The response
// is a point-in-time snapshot; the route sits behind the redis
// response cache, which bounds staleness by its TTL.
func (h *EventHandler) GetAvailableSeats(c echo.Context) error {
    code := c.Param("code")
    res, err := h.Availability.ComputeAvailability(c.Request().Context(), code, time.Now().UTC())
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}
