// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation coordinator to distinguish between different failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrEventNotFound is returned when no event exists for the requested
// code.
var ErrEventNotFound = errors.New("event not found")

// ErrBookingNotFound is returned when no booking exists for the
// requested identifier.
var ErrBookingNotFound = errors.New("booking not found")

// ErrLeaseConflict is returned when inserting a lease collides with an
// existing row for the same (event, seat) slot. The unique key on
// seat_leases makes concurrent holds for the same seat fail here
// instead of double-leasing; callers surface it as a seat-locked
// condition.
var ErrLeaseConflict = errors.New("lease conflict")
