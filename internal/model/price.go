package model

import "time"

// DefaultSeatPrice is used when no price row exists for an event.
const DefaultSeatPrice uint32 = 300

// DefaultCurrency is the currency attached to every price row.
const DefaultCurrency = "RS"

// Price stores the per-seat price for an event.  There is at most one
// row per event; SetSeatPrice upserts it.  Bookings snapshot the price
// at creation time, so updating a Price never rewrites history.
//
// Fields:
//  EventCode – event the price applies to (primary key).
//  SeatPrice – price per seat.
//  Currency  – currency code, currently always "RS".
//  CreatedAt – creation timestamp.
//  UpdatedAt – last modification timestamp.
type Price struct {
    EventCode string    // prices.event_code
    SeatPrice uint32    // prices.seat_price
    Currency  string    // prices.currency
    CreatedAt time.Time // prices.created_at
    UpdatedAt time.Time // prices.updated_at
}
