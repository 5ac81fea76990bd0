package model

import "time"

// Lease is a temporary hold on a single seat during checkout.  Leases
// prevent concurrent flows from grabbing the same seat while a user is
// paying.  A lease expires automatically at its ExpiresAt timestamp;
// the database enforces at most one lease row per (event, seat) pair,
// which is how concurrent holds for the same seat are made to conflict.
//
// Fields:
//  ID          – primary key identifier.
//  EventCode   – event to which the seat belongs.
//  SeatLabel   – seat being held.
//  EventDate   – scheduled date of the event at hold time.
//  DurationMin – event duration in minutes at hold time.
//  ExpiresAt   – when the hold lapses.
//  CreatedAt   – when the hold was created.
type Lease struct {
    ID          uint64    // seat_leases.id
    EventCode   string    // seat_leases.event_code
    SeatLabel   string    // seat_leases.seat_label
    EventDate   time.Time // seat_leases.event_date
    DurationMin uint32    // seat_leases.duration_min
    ExpiresAt   time.Time // seat_leases.expires_at
    CreatedAt   time.Time // seat_leases.created_at
}

// Active reports whether the lease is still in force at the given
// instant.
func (l Lease) Active(now time.Time) bool {
    return l.ExpiresAt.After(now)
}
