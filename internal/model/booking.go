package model

import "time"

// Booking status values.  CANCELLED is terminal: no transition leads
// out of it.
const (
    BookingPending   = "PENDING"
    BookingConfirmed = "CONFIRMED"
    BookingCancelled = "CANCELLED"
)

// Payment status values.  COMPLETED and FAILED are terminal.
const (
    PaymentPending   = "PENDING"
    PaymentCompleted = "COMPLETED"
    PaymentFailed    = "FAILED"
)

// Booking records a user's reservation of one or more seats for an
// event.  The seat list and the price snapshot are fixed at creation;
// later price changes never affect an existing booking.  A seat is
// permanently unavailable only while its booking is CONFIRMED with a
// COMPLETED payment.
//
// Fields:
//  ID            – primary key identifier.
//  EventCode     – event being booked.
//  UserID        – user who made the booking.
//  Seats         – seat labels in the booking, in creation order.
//  Status        – PENDING, CONFIRMED or CANCELLED.
//  PaymentStatus – PENDING, COMPLETED or FAILED.
//  SeatPrice     – per-seat price snapshot taken at creation.
//  TotalPrice    – SeatPrice multiplied by the seat count.
//  PaymentID     – external payment reference (unique when set).
//  PaymentDate   – when the payment completed.
//  EventDate     – scheduled event date at booking time.
//  DurationMin   – event duration in minutes at booking time.
//  CreatedAt     – creation timestamp.
//  CanceledAt    – when the booking was cancelled.
type Booking struct {
    ID            uint64     // bookings.id
    EventCode     string     // bookings.event_code
    UserID        string     // bookings.user_id
    Seats         []string   // booking_seats.seat_label rows, ordered
    Status        string     // bookings.status
    PaymentStatus string     // bookings.payment_status
    SeatPrice     uint32     // bookings.seat_price
    TotalPrice    uint32     // bookings.total_price
    PaymentID     *string    // bookings.payment_id (nullable)
    PaymentDate   *time.Time // bookings.payment_date (nullable)
    EventDate     time.Time  // bookings.event_date
    DurationMin   uint32     // bookings.duration_min
    CreatedAt     time.Time  // bookings.created_at
    CanceledAt    *time.Time // bookings.canceled_at (nullable)
}
