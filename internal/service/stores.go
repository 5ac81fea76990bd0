package service

import (
    "context"
    "time"

    "github.com/iliyamo/event-seat-inventory/internal/model"
)

// The store interfaces below are the contracts the reservation core
// requires from its persistence collaborators.  The MySQL
// implementations live in internal/repository; tests substitute
// in-memory fakes.  Implementations must enforce the unexpired-lease
// slot uniqueness in CreateLeases; the coordinator relies on the
// conflict error for its exactly-one-winner guarantee.

// EventStore persists events and their append-only seat sets.
type EventStore interface {
    Create(ctx context.Context, ev *model.Event) error
    FindByCode(ctx context.Context, code string) (*model.Event, error)
    ListSeats(ctx context.Context, code string) ([]string, error)
    AddSeats(ctx context.Context, code string, seats []string, eventDate time.Time, durationMin uint32) (added int64, total int64, err error)
}

// LeaseStore persists seat leases.  CreateLeases is all-or-nothing and
// returns repository.ErrLeaseConflict when any requested slot is
// occupied by an unexpired lease.
type LeaseStore interface {
    FindActive(ctx context.Context, eventCode string, seats []string, now time.Time) ([]model.Lease, error)
    ActiveSeats(ctx context.Context, eventCode string, now time.Time) ([]string, error)
    CreateLeases(ctx context.Context, leases []model.Lease) error
    DeleteLeases(ctx context.Context, eventCode string, seats []string) (int64, error)
    DeleteExpired(ctx context.Context, now time.Time) (int64, error)
    Count(ctx context.Context) (int64, error)
}

// BookingStore persists bookings and their fixed seat lists.
type BookingStore interface {
    Create(ctx context.Context, b *model.Booking) error
    FindByID(ctx context.Context, id uint64) (*model.Booking, error)
    BookedSeats(ctx context.Context, eventCode, status, paymentStatus string) ([]string, error)
    UpdatePayment(ctx context.Context, id uint64, paymentID string, paymentDate time.Time) error
    MarkCancelled(ctx context.Context, id uint64, canceledAt time.Time) error
}

// PriceStore persists per-event seat prices.  Find returns nil when no
// price has been set for the event.
type PriceStore interface {
    Find(ctx context.Context, eventCode string) (*model.Price, error)
    Upsert(ctx context.Context, eventCode string, seatPrice uint32) error
}
