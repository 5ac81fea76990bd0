package model

import "time"

// Event represents a timed event whose seat inventory is managed by
// the reservation core.  Events are identified by a short
// alphanumeric code chosen at creation time.  The seat set is
// append-only: seats may be inserted later but never removed.
//
// Fields:
//  Code        – short alphanumeric identifier (primary key).
//  Name        – human readable event name.
//  City        – city where the event takes place.
//  StartsAt    – scheduled date and time of the event.
//  DurationMin – duration of the event in minutes.
//  Seats       – seat labels belonging to the event (unique per event).
//  CreatedAt   – creation timestamp.
type Event struct {
    Code        string    // events.code
    Name        string    // events.name
    City        string    // events.city
    StartsAt    time.Time // events.starts_at
    DurationMin uint32    // events.duration_min
    Seats       []string  // event_seats.seat_label rows
    CreatedAt   time.Time // events.created_at
}
