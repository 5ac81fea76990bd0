// Package queue defines message payloads exchanged over the message broker.
package queue

// Booking event kinds published to the booking.events queue.
const (
    KindPaymentCompleted = "booking.payment_completed"
    KindBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking changes state in a way
// downstream consumers care about: payment completion and
// cancellation.  It carries enough information to log, notify or feed
// analytics without querying the primary database.
type BookingEvent struct {
    EventID       string   `json:"event_id"` // unique message identifier
    Kind          string   `json:"kind"`
    BookingID     uint64   `json:"booking_id"`
    EventCode     string   `json:"event_code"`
    UserID        string   `json:"user_id,omitempty"`
    Seats         []string `json:"seats"`
    TotalPrice    uint32   `json:"total_price"`
    PaymentStatus string   `json:"payment_status"`
    Status        string   `json:"status"`
    OccurredAt    string   `json:"occurred_at"`
}
