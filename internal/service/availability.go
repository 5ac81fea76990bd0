package service

import (
    "context"
    "errors"
    "time"

    "github.com/iliyamo/event-seat-inventory/internal/model"
    "github.com/iliyamo/event-seat-inventory/internal/repository"
)

// Availability is the point-in-time seat partition of an event: every
// seat is free, leased or booked.  Counts use set semantics, so a seat
// appearing in several paid bookings is still counted once.
type Availability struct {
    EventCode      string    `json:"eventId"`
    EventName      string    `json:"eventName"`
    EventDate      time.Time `json:"eventDate"`
    Duration       uint32    `json:"duration"`
    TotalSeats     int       `json:"totalSeats"`
    AvailableSeats []string  `json:"availableSeats"`
    AvailableCount int       `json:"availableCount"`
    BookedCount    int       `json:"bookedCount"`
    LeasedCount    int       `json:"lockedCount"`
}

// AvailabilityEngine computes seat availability from the event,
// booking and lease stores.  It is strictly read-only and tolerates
// slightly stale reads: the three store reads are not serialized
// against concurrent writers, the result is a snapshot.
type AvailabilityEngine struct {
    events   EventStore
    leases   LeaseStore
    bookings BookingStore
}

// NewAvailabilityEngine constructs an AvailabilityEngine.
func NewAvailabilityEngine(events EventStore, leases LeaseStore, bookings BookingStore) *AvailabilityEngine {
    if events == nil || leases == nil || bookings == nil {
        panic("nil store passed to NewAvailabilityEngine")
    }
    return &AvailabilityEngine{events: events, leases: leases, bookings: bookings}
}

// ComputeAvailability partitions the seats of an event at the given
// instant: free = seats − (paid-booking seats ∪ unexpired-lease
// seats).  Expired leases are excluded by the query itself, so the
// result is correct independent of reaper timing.  Fails with
// ErrEventNotFound.
func (e *AvailabilityEngine) ComputeAvailability(ctx context.Context, eventCode string, now time.Time) (*Availability, error) {
    if eventCode == "" {
        return nil, ErrInvalidArgument
    }
    ev, err := e.events.FindByCode(ctx, eventCode)
    if err != nil {
        if errors.Is(err, repository.ErrEventNotFound) {
            return nil, ErrEventNotFound
        }
        return nil, err
    }

    booked, err := e.bookings.BookedSeats(ctx, eventCode, model.BookingConfirmed, model.PaymentCompleted)
    if err != nil {
        return nil, err
    }
    leased, err := e.leases.ActiveSeats(ctx, eventCode, now.UTC())
    if err != nil {
        return nil, err
    }

    bookedSet := toSet(booked)
    leasedSet := toSet(leased)
    free := make([]string, 0, len(ev.Seats))
    for _, s := range ev.Seats {
        if _, ok := bookedSet[s]; ok {
            continue
        }
        if _, ok := leasedSet[s]; ok {
            continue
        }
        free = append(free, s)
    }

    return &Availability{
        EventCode:      ev.Code,
        EventName:      ev.Name,
        EventDate:      ev.StartsAt,
        Duration:       ev.DurationMin,
        TotalSeats:     len(ev.Seats),
        AvailableSeats: free,
        AvailableCount: len(free),
        BookedCount:    len(bookedSet),
        LeasedCount:    len(leasedSet),
    }, nil
}

func toSet(seats []string) map[string]struct{} {
    set := make(map[string]struct{}, len(seats))
    for _, s := range seats {
        set[s] = struct{}{}
    }
    return set
}
