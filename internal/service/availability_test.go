package service

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestComputeAvailabilityValidation(t *testing.T) {
    env := newTestEnv()
    engine := NewAvailabilityEngine(env.events, env.leases, env.bookings)

    _, err := engine.ComputeAvailability(context.Background(), "", env.clock())
    assert.ErrorIs(t, err, ErrInvalidArgument)
    _, err = engine.ComputeAvailability(context.Background(), "MISSING", env.clock())
    assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestComputeAvailability(t *testing.T) {
    env := newTestEnv()
    ctx := context.Background()
    engine := NewAvailabilityEngine(env.events, env.leases, env.bookings)
    seedEvent(t, env, "EV1", "A1", "A2", "A3", "A4")

    // A1 ends up paid and booked, A2 stays under a live lease.
    _, err := env.coord.HoldSeats(ctx, "EV1", []string{"A1"}, testDate, testDuration)
    require.NoError(t, err)
    confirmed, err := env.coord.ConfirmBooking(ctx, "EV1", []string{"A1"}, "user-1", testDate, testDuration)
    require.NoError(t, err)
    _, err = env.coord.ProcessPayment(ctx, confirmed.BookingID, "pay-1", testDate, testDuration)
    require.NoError(t, err)
    _, err = env.coord.HoldSeats(ctx, "EV1", []string{"A2"}, testDate, testDuration)
    require.NoError(t, err)

    av, err := engine.ComputeAvailability(ctx, "EV1", env.clock())
    require.NoError(t, err)
    assert.Equal(t, "EV1", av.EventCode)
    assert.Equal(t, 4, av.TotalSeats)
    assert.Equal(t, []string{"A3", "A4"}, av.AvailableSeats)
    assert.Equal(t, 2, av.AvailableCount)
    assert.Equal(t, 1, av.BookedCount)
    // A1 carries the payment's protective lease on top of the booking,
    // so the leased set is {A1, A2}; sets keep the counts honest.
    assert.Equal(t, 2, av.LeasedCount)
}

func TestComputeAvailabilityIgnoresExpiredLeases(t *testing.T) {
    env := newTestEnv()
    ctx := context.Background()
    engine := NewAvailabilityEngine(env.events, env.leases, env.bookings)
    seedEvent(t, env, "EV1", "A1", "A2")

    _, err := env.coord.HoldSeats(ctx, "EV1", []string{"A1"}, testDate, testDuration)
    require.NoError(t, err)

    // Expiry is applied at query time; the seat frees up with no
    // reaper pass in between.
    later := env.clock().Add(HoldDuration + time.Minute)
    av, err := engine.ComputeAvailability(ctx, "EV1", later)
    require.NoError(t, err)
    assert.Equal(t, []string{"A1", "A2"}, av.AvailableSeats)
    assert.Zero(t, av.LeasedCount)
}

func TestComputeAvailabilityPaymentWindow(t *testing.T) {
    env := newTestEnv()
    ctx := context.Background()
    engine := NewAvailabilityEngine(env.events, env.leases, env.bookings)
    seedEvent(t, env, "EV1", "A1")

    _, err := env.coord.HoldSeats(ctx, "EV1", []string{"A1"}, testDate, testDuration)
    require.NoError(t, err)
    _, err = env.coord.ConfirmBooking(ctx, "EV1", []string{"A1"}, "user-1", testDate, testDuration)
    require.NoError(t, err)

    // Between confirmation and payment the seat reads as available;
    // the pending booking does not reserve it.
    av, err := engine.ComputeAvailability(ctx, "EV1", env.clock())
    require.NoError(t, err)
    assert.Equal(t, []string{"A1"}, av.AvailableSeats)
    assert.Zero(t, av.BookedCount)
}
