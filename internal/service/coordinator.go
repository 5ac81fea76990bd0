package service

import (
    "context"
    "crypto/rand"
    "errors"
    "fmt"
    "log"
    "math"
    "sync"
    "time"

    "github.com/iliyamo/event-seat-inventory/internal/model"
    "github.com/iliyamo/event-seat-inventory/internal/queue"
    "github.com/iliyamo/event-seat-inventory/internal/repository"
)

// HoldDuration is how long a seat lease lasts.  Fixed policy, not a
// per-call tunable.
const HoldDuration = 10 * time.Minute

// BookingPublisher emits booking lifecycle events to the message
// broker.  Publish failures never fail the operation that triggered
// them; the coordinator logs and moves on.
type BookingPublisher interface {
    PublishBookingEvent(ctx context.Context, ev queue.BookingEvent) error
}

// Coordinator orchestrates the hold → confirm → pay → cancel seat
// lifecycle.  It is the only writer of the lease and booking stores.
// Check-then-act sections for holds and confirmations are serialized
// per event through a keyed mutex, and the lease store's slot
// uniqueness backs that up across processes, so concurrent holds for
// the same seat yield exactly one winner.
type Coordinator struct {
    events   EventStore
    leases   LeaseStore
    bookings BookingStore
    prices   PriceStore
    pub      BookingPublisher

    mu        sync.Mutex
    eventLock map[string]*sync.Mutex

    now func() time.Time // overridable in tests
}

// NewCoordinator constructs a Coordinator with its stores.  pub may be
// nil when no broker is configured.
func NewCoordinator(events EventStore, leases LeaseStore, bookings BookingStore, prices PriceStore, pub BookingPublisher) *Coordinator {
    if events == nil || leases == nil || bookings == nil || prices == nil {
        panic("nil store passed to NewCoordinator")
    }
    return &Coordinator{
        events:    events,
        leases:    leases,
        bookings:  bookings,
        prices:    prices,
        pub:       pub,
        eventLock: make(map[string]*sync.Mutex),
        now:       time.Now,
    }
}

// lockEvent returns the mutex serializing hold/confirm flows for one
// event, creating it on first use.  Entries are never removed; the map
// is bounded by the number of events.
func (c *Coordinator) lockEvent(code string) *sync.Mutex {
    c.mu.Lock()
    defer c.mu.Unlock()
    m, ok := c.eventLock[code]
    if !ok {
        m = &sync.Mutex{}
        c.eventLock[code] = m
    }
    return m
}

// HoldResult reports a successful batch hold.
type HoldResult struct {
    Message   string    `json:"message"`
    EventCode string    `json:"eventId"`
    Seats     []string  `json:"seats"`
    ExpiresAt time.Time `json:"expiresAt"`
    EventDate time.Time `json:"eventDate"`
    Duration  uint32    `json:"duration"`
}

// HoldSeats places a 10-minute lease on every requested seat.  The
// batch is all-or-nothing: when any seat is already booked
// (ErrSeatUnavailable) or under an active lease (ErrSeatLocked), no
// lease is created at all.
func (c *Coordinator) HoldSeats(ctx context.Context, eventCode string, seats []string, eventDate time.Time, durationMin uint32) (*HoldResult, error) {
    if eventCode == "" || eventDate.IsZero() || durationMin == 0 {
        return nil, fmt.Errorf("%w: event id, event date and duration are required", ErrInvalidArgument)
    }
    seats = dedupeSeats(seats)
    if len(seats) == 0 {
        return nil, fmt.Errorf("%w: seats must be a non-empty list", ErrInvalidArgument)
    }

    lock := c.lockEvent(eventCode)
    lock.Lock()
    defer lock.Unlock()

    now := c.now().UTC()
    if err := c.ensureNotBooked(ctx, eventCode, seats); err != nil {
        return nil, err
    }
    active, err := c.leases.FindActive(ctx, eventCode, seats, now)
    if err != nil {
        return nil, err
    }
    if len(active) > 0 {
        return nil, fmt.Errorf("%w: seat %s", ErrSeatLocked, active[0].SeatLabel)
    }

    expiresAt := now.Add(HoldDuration)
    leases := make([]model.Lease, 0, len(seats))
    for _, s := range seats {
        leases = append(leases, model.Lease{
            EventCode:   eventCode,
            SeatLabel:   s,
            EventDate:   eventDate,
            DurationMin: durationMin,
            ExpiresAt:   expiresAt,
        })
    }
    if err := c.leases.CreateLeases(ctx, leases); err != nil {
        // A conflict here means another flow won the slot between our
        // read and the insert; same outcome as the explicit check.
        if errors.Is(err, repository.ErrLeaseConflict) {
            return nil, ErrSeatLocked
        }
        return nil, err
    }
    return &HoldResult{
        Message:   "Seats held for 10 minutes",
        EventCode: eventCode,
        Seats:     seats,
        ExpiresAt: expiresAt,
        EventDate: eventDate,
        Duration:  durationMin,
    }, nil
}

// ConfirmResult reports a created booking awaiting payment.
type ConfirmResult struct {
    BookingID     uint64    `json:"bookingId"`
    Message       string    `json:"message"`
    Seats         []string  `json:"seats"`
    SeatPrice     uint32    `json:"seatPrice"`
    TotalPrice    uint32    `json:"totalPrice"`
    PaymentStatus string    `json:"paymentStatus"`
    EventDate     time.Time `json:"eventDate"`
    Duration      uint32    `json:"duration"`
}

// ConfirmBooking promotes held seats into a PENDING booking.  Every
// requested seat must carry an unexpired lease (ErrLeaseExpired
// otherwise) and none may already belong to a paid booking
// (ErrSeatUnavailable).  The seat price is snapshotted from the price
// store, falling back to the default.
//
// The leases are deleted once the booking exists: until the payment
// completes and re-leases the seats, a seat has neither lease nor
// completed booking, so a concurrent hold can acquire it.  This
// payment-window gap mirrors the long-standing behavior of the flow
// and is deliberately left open.
func (c *Coordinator) ConfirmBooking(ctx context.Context, eventCode string, seats []string, userID string, eventDate time.Time, durationMin uint32) (*ConfirmResult, error) {
    if eventCode == "" || userID == "" || eventDate.IsZero() || durationMin == 0 {
        return nil, fmt.Errorf("%w: event id, user id, event date and duration are required", ErrInvalidArgument)
    }
    seats = dedupeSeats(seats)
    if len(seats) == 0 {
        return nil, fmt.Errorf("%w: seats must be a non-empty list", ErrInvalidArgument)
    }

    lock := c.lockEvent(eventCode)
    lock.Lock()
    defer lock.Unlock()

    now := c.now().UTC()
    if err := c.ensureNotBooked(ctx, eventCode, seats); err != nil {
        return nil, err
    }
    active, err := c.leases.FindActive(ctx, eventCode, seats, now)
    if err != nil {
        return nil, err
    }
    if len(active) != len(seats) {
        return nil, ErrLeaseExpired
    }

    seatPrice := model.DefaultSeatPrice
    price, err := c.prices.Find(ctx, eventCode)
    if err != nil {
        return nil, err
    }
    if price != nil {
        seatPrice = price.SeatPrice
    }
    total := uint64(seatPrice) * uint64(len(seats))
    if total > math.MaxUint32 {
        return nil, fmt.Errorf("%w: total price exceeds the supported maximum", ErrInvalidArgument)
    }
    totalPrice := uint32(total)

    booking := &model.Booking{
        EventCode:     eventCode,
        UserID:        userID,
        Seats:         seats,
        Status:        model.BookingPending,
        PaymentStatus: model.PaymentPending,
        SeatPrice:     seatPrice,
        TotalPrice:    totalPrice,
        EventDate:     eventDate,
        DurationMin:   durationMin,
    }
    if err := c.bookings.Create(ctx, booking); err != nil {
        return nil, err
    }
    if _, err := c.leases.DeleteLeases(ctx, eventCode, seats); err != nil {
        return nil, err
    }
    return &ConfirmResult{
        BookingID:     booking.ID,
        Message:       "Booking created. Payment required to confirm seats.",
        Seats:         seats,
        SeatPrice:     seatPrice,
        TotalPrice:    totalPrice,
        PaymentStatus: model.PaymentPending,
        EventDate:     eventDate,
        Duration:      durationMin,
    }, nil
}

// PaymentResult reports a completed payment.
type PaymentResult struct {
    Message       string    `json:"message"`
    BookingID     uint64    `json:"bookingId"`
    PaymentStatus string    `json:"paymentStatus"`
    PaymentID     string    `json:"paymentId"`
    PaymentDate   time.Time `json:"paymentDate"`
    Seats         []string  `json:"seats"`
    TotalPrice    uint32    `json:"totalPrice"`
    Status        string    `json:"status"`
}

// ProcessPayment consumes an external payment confirmation: it marks
// the booking CONFIRMED with a COMPLETED payment and re-creates a
// protective lease on every booked seat.  Fails with
// ErrBookingNotFound or ErrAlreadyPaid.
func (c *Coordinator) ProcessPayment(ctx context.Context, bookingID uint64, paymentID string, eventDate time.Time, durationMin uint32) (*PaymentResult, error) {
    if bookingID == 0 || paymentID == "" {
        return nil, fmt.Errorf("%w: booking id and payment id are required", ErrInvalidArgument)
    }
    booking, err := c.bookings.FindByID(ctx, bookingID)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    if booking.PaymentStatus == model.PaymentCompleted {
        return nil, ErrAlreadyPaid
    }

    now := c.now().UTC()
    if err := c.bookings.UpdatePayment(ctx, bookingID, paymentID, now); err != nil {
        return nil, err
    }

    expiresAt := now.Add(HoldDuration)
    leases := make([]model.Lease, 0, len(booking.Seats))
    for _, s := range booking.Seats {
        leases = append(leases, model.Lease{
            EventCode:   booking.EventCode,
            SeatLabel:   s,
            EventDate:   booking.EventDate,
            DurationMin: booking.DurationMin,
            ExpiresAt:   expiresAt,
        })
    }
    if err := c.leases.CreateLeases(ctx, leases); err != nil {
        // The protective lease is best effort: the paid booking alone
        // already makes the seats unavailable.  A conflict means some
        // seat was re-held during the payment window.
        log.Printf("coordinator: protective lease for booking %d failed: %v", bookingID, err)
    }

    c.publish(ctx, queue.BookingEvent{
        Kind:          queue.KindPaymentCompleted,
        BookingID:     booking.ID,
        EventCode:     booking.EventCode,
        UserID:        booking.UserID,
        Seats:         booking.Seats,
        TotalPrice:    booking.TotalPrice,
        PaymentStatus: model.PaymentCompleted,
        Status:        model.BookingConfirmed,
        OccurredAt:    now.Format(time.RFC3339),
    })

    return &PaymentResult{
        Message:       "Payment processed successfully. Seats are now confirmed.",
        BookingID:     booking.ID,
        PaymentStatus: model.PaymentCompleted,
        PaymentID:     paymentID,
        PaymentDate:   now,
        Seats:         booking.Seats,
        TotalPrice:    booking.TotalPrice,
        Status:        model.BookingConfirmed,
    }, nil
}

// PaymentDetails is the read-only projection of a booking returned to
// callers checking payment state.
type PaymentDetails struct {
    BookingID     uint64    `json:"bookingId"`
    Seats         []string  `json:"seats"`
    SeatPrice     uint32    `json:"seatPrice"`
    TotalPrice    uint32    `json:"totalPrice"`
    PaymentStatus string    `json:"paymentStatus"`
    Status        string    `json:"status"`
    EventDate     time.Time `json:"eventDate"`
    Duration      uint32    `json:"duration"`
}

// GetBookingPaymentDetails returns the payment projection of a
// booking.  Fails with ErrBookingNotFound.
func (c *Coordinator) GetBookingPaymentDetails(ctx context.Context, bookingID uint64) (*PaymentDetails, error) {
    booking, err := c.bookings.FindByID(ctx, bookingID)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    return &PaymentDetails{
        BookingID:     booking.ID,
        Seats:         booking.Seats,
        SeatPrice:     booking.SeatPrice,
        TotalPrice:    booking.TotalPrice,
        PaymentStatus: booking.PaymentStatus,
        Status:        booking.Status,
        EventDate:     booking.EventDate,
        Duration:      booking.DurationMin,
    }, nil
}

// PriceResult reports a price upsert.
type PriceResult struct {
    Message   string `json:"message"`
    EventCode string `json:"eventId"`
    SeatPrice uint32 `json:"seatPrice"`
    Currency  string `json:"currency"`
}

// SetSeatPrice upserts the per-seat price for an event.  The price row
// is keyed by event code alone; the event's existence is not checked,
// so a price may be staged before the event is created.  Existing
// bookings keep their snapshotted price.  Fails with
// ErrInvalidArgument when the event id is missing or the price is not
// positive or does not fit the stored column.
func (c *Coordinator) SetSeatPrice(ctx context.Context, eventCode string, seatPrice int64) (*PriceResult, error) {
    if eventCode == "" || seatPrice <= 0 {
        return nil, fmt.Errorf("%w: event id and a positive seat price are required", ErrInvalidArgument)
    }
    if seatPrice > math.MaxUint32 {
        return nil, fmt.Errorf("%w: seat price exceeds the supported maximum", ErrInvalidArgument)
    }
    if err := c.prices.Upsert(ctx, eventCode, uint32(seatPrice)); err != nil {
        return nil, err
    }
    return &PriceResult{
        Message:   "Seat price updated successfully",
        EventCode: eventCode,
        SeatPrice: uint32(seatPrice),
        Currency:  model.DefaultCurrency,
    }, nil
}

// InsertSeatsResult reports a seat insertion.  TotalSeats is the
// post-insert seat count of the event; the message quotes the input
// count even when some labels already existed.
type InsertSeatsResult struct {
    Message    string    `json:"message"`
    TotalSeats int64     `json:"totalSeats"`
    EventDate  time.Time `json:"eventDate"`
    Duration   uint32    `json:"duration"`
}

// InsertSeats unions seat labels into an event's seat set (duplicates
// silently ignored) and overwrites the event's date and duration with
// the supplied values, even when every label was already present.
// Fails with ErrInvalidArgument on an empty list and ErrEventNotFound
// when the event does not exist.
func (c *Coordinator) InsertSeats(ctx context.Context, eventCode string, seats []string, eventDate time.Time, durationMin uint32) (*InsertSeatsResult, error) {
    if len(seats) == 0 {
        return nil, fmt.Errorf("%w: seats must be a non-empty list", ErrInvalidArgument)
    }
    if eventCode == "" || eventDate.IsZero() || durationMin == 0 {
        return nil, fmt.Errorf("%w: event id, event date and duration are required", ErrInvalidArgument)
    }
    _, total, err := c.events.AddSeats(ctx, eventCode, dedupeSeats(seats), eventDate, durationMin)
    if err != nil {
        if errors.Is(err, repository.ErrEventNotFound) {
            return nil, ErrEventNotFound
        }
        return nil, err
    }
    return &InsertSeatsResult{
        Message:    fmt.Sprintf("%d seats inserted successfully", len(seats)),
        TotalSeats: total,
        EventDate:  eventDate,
        Duration:   durationMin,
    }, nil
}

// CancelResult reports a cancellation.
type CancelResult struct {
    Message       string    `json:"message"`
    BookingID     uint64    `json:"bookingId"`
    CanceledSeats []string  `json:"canceledSeats"`
    EventDate     time.Time `json:"eventDate"`
    Duration      uint32    `json:"duration"`
    CanceledAt    time.Time `json:"canceledAt"`
    RefundAmount  uint32    `json:"refundAmount"`
}

// CancelBooking moves a booking to the terminal CANCELLED state from
// any non-cancelled state and removes any outstanding leases on its
// seats.  The refund amount equals the total price when the payment
// had completed, zero otherwise.  Fails with ErrBookingNotFound or
// ErrAlreadyCancelled; a second cancellation leaves state unchanged.
func (c *Coordinator) CancelBooking(ctx context.Context, bookingID uint64, eventDate time.Time, durationMin uint32) (*CancelResult, error) {
    if bookingID == 0 || eventDate.IsZero() || durationMin == 0 {
        return nil, fmt.Errorf("%w: booking id, event date and duration are required", ErrInvalidArgument)
    }
    booking, err := c.bookings.FindByID(ctx, bookingID)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    if booking.Status == model.BookingCancelled {
        return nil, ErrAlreadyCancelled
    }

    now := c.now().UTC()
    if err := c.bookings.MarkCancelled(ctx, bookingID, now); err != nil {
        return nil, err
    }
    if _, err := c.leases.DeleteLeases(ctx, booking.EventCode, booking.Seats); err != nil {
        return nil, err
    }
    var refund uint32
    if booking.PaymentStatus == model.PaymentCompleted {
        refund = booking.TotalPrice
    }

    c.publish(ctx, queue.BookingEvent{
        Kind:          queue.KindBookingCancelled,
        BookingID:     booking.ID,
        EventCode:     booking.EventCode,
        UserID:        booking.UserID,
        Seats:         booking.Seats,
        TotalPrice:    booking.TotalPrice,
        PaymentStatus: booking.PaymentStatus,
        Status:        model.BookingCancelled,
        OccurredAt:    now.Format(time.RFC3339),
    })

    return &CancelResult{
        Message:       "Booking cancelled successfully",
        BookingID:     booking.ID,
        CanceledSeats: booking.Seats,
        EventDate:     eventDate,
        Duration:      durationMin,
        CanceledAt:    now,
        RefundAmount:  refund,
    }, nil
}

// CreateEvent registers a new event with an optional initial seat set.
// When no code is supplied a random 8-character uppercase code is
// generated.  Fails with ErrInvalidArgument when name, date or
// duration are missing.
func (c *Coordinator) CreateEvent(ctx context.Context, code, name, city string, startsAt time.Time, durationMin uint32, seats []string) (*model.Event, error) {
    if name == "" || startsAt.IsZero() || durationMin == 0 {
        return nil, fmt.Errorf("%w: event name, date and duration are required", ErrInvalidArgument)
    }
    if code == "" {
        var err error
        code, err = newEventCode()
        if err != nil {
            return nil, err
        }
    }
    ev := &model.Event{
        Code:        code,
        Name:        name,
        City:        city,
        StartsAt:    startsAt,
        DurationMin: durationMin,
        Seats:       dedupeSeats(seats),
    }
    if err := c.events.Create(ctx, ev); err != nil {
        return nil, err
    }
    return ev, nil
}

// ensureNotBooked fails with ErrSeatUnavailable when any of the seats
// already belongs to a confirmed booking with a completed payment.
func (c *Coordinator) ensureNotBooked(ctx context.Context, eventCode string, seats []string) error {
    booked, err := c.bookings.BookedSeats(ctx, eventCode, model.BookingConfirmed, model.PaymentCompleted)
    if err != nil {
        return err
    }
    if len(booked) == 0 {
        return nil
    }
    taken := make(map[string]struct{}, len(booked))
    for _, s := range booked {
        taken[s] = struct{}{}
    }
    for _, s := range seats {
        if _, ok := taken[s]; ok {
            return fmt.Errorf("%w: seat %s", ErrSeatUnavailable, s)
        }
    }
    return nil
}

// publish sends a booking event with a fresh message id, logging and
// swallowing any failure.
func (c *Coordinator) publish(ctx context.Context, ev queue.BookingEvent) {
    if c.pub == nil {
        return
    }
    if err := c.pub.PublishBookingEvent(ctx, ev); err != nil {
        log.Printf("coordinator: publish %s for booking %d failed: %v", ev.Kind, ev.BookingID, err)
    }
}

// dedupeSeats drops empty and repeated labels while preserving the
// first-seen order.
func dedupeSeats(seats []string) []string {
    out := make([]string, 0, len(seats))
    seen := make(map[string]struct{}, len(seats))
    for _, s := range seats {
        if s == "" {
            continue
        }
        if _, ok := seen[s]; ok {
            continue
        }
        seen[s] = struct{}{}
        out = append(out, s)
    }
    return out
}

// eventCodeAlphabet excludes easily confused characters.
const eventCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newEventCode returns a random 8-character event code.
func newEventCode() (string, error) {
    b := make([]byte, 8)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    for i := range b {
        b[i] = eventCodeAlphabet[int(b[i])%len(eventCodeAlphabet)]
    }
    return string(b), nil
}
