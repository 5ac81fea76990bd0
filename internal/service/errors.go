package service

import "errors"

// Sentinel errors returned by the reservation coordinator and the
// availability engine.  Handlers compare with errors.Is and translate
// them into HTTP status codes; no operation downgrades one kind into
// another.
var (
    // ErrInvalidArgument signals missing or malformed input: empty
    // seat lists, absent identifiers, non-positive prices.
    ErrInvalidArgument = errors.New("invalid argument")

    // ErrEventNotFound signals that the referenced event does not exist.
    ErrEventNotFound = errors.New("event not found")

    // ErrBookingNotFound signals that the referenced booking does not exist.
    ErrBookingNotFound = errors.New("booking not found")

    // ErrSeatUnavailable signals that a seat already belongs to a
    // confirmed booking with a completed payment.
    ErrSeatUnavailable = errors.New("one or more seats are already booked")

    // ErrSeatLocked signals that a seat is under an active lease held
    // by a concurrent flow.
    ErrSeatLocked = errors.New("seat is temporarily locked")

    // ErrLeaseExpired signals a booking confirmation without a valid
    // prior hold on every requested seat.
    ErrLeaseExpired = errors.New("seat lease expired")

    // ErrAlreadyPaid signals a repeated payment for a booking whose
    // payment has already completed.
    ErrAlreadyPaid = errors.New("payment already completed for this booking")

    // ErrAlreadyCancelled signals cancellation of a booking that is
    // already in the terminal CANCELLED state.
    ErrAlreadyCancelled = errors.New("booking is already cancelled")
)
