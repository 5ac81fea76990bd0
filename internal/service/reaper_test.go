package service

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/event-seat-inventory/internal/model"
)

func putLease(store *fakeLeaseStore, eventCode, seat string, expiresAt time.Time) {
    store.mu.Lock()
    defer store.mu.Unlock()
    store.nextID++
    store.leases[leaseKey(eventCode, seat)] = model.Lease{
        ID:        store.nextID,
        EventCode: eventCode,
        SeatLabel: seat,
        ExpiresAt: expiresAt,
    }
}

func TestReaperRunOnceEmptyTable(t *testing.T) {
    store := newFakeLeaseStore()
    NewReaper(store).RunOnce(context.Background())

    // An empty table skips the delete entirely.
    assert.Zero(t, store.deleteExpired)
}

func TestReaperRunOnceRemovesExpired(t *testing.T) {
    store := newFakeLeaseStore()
    now := time.Now().UTC()
    putLease(store, "EV1", "A1", now.Add(-time.Minute))
    putLease(store, "EV1", "A2", now.Add(HoldDuration))

    NewReaper(store).RunOnce(context.Background())

    n, err := store.Count(context.Background())
    require.NoError(t, err)
    assert.Equal(t, int64(1), n)
    active, err := store.ActiveSeats(context.Background(), "EV1", now)
    require.NoError(t, err)
    assert.Equal(t, []string{"A2"}, active)
}

func TestReaperRunOnceSwallowsErrors(t *testing.T) {
    store := newFakeLeaseStore()
    putLease(store, "EV1", "A1", time.Now().UTC().Add(-time.Minute))

    store.countErr = errors.New("connection refused")
    NewReaper(store).RunOnce(context.Background())
    assert.Zero(t, store.deleteExpired)

    store.countErr = nil
    store.deleteExpiredErr = errors.New("lock wait timeout")
    NewReaper(store).RunOnce(context.Background())

    // The sweep failed but nothing blew up; the lease survives until
    // the next pass.
    n, err := store.Count(context.Background())
    require.NoError(t, err)
    assert.Equal(t, int64(1), n)
}

func TestReaperRunStopsOnCancel(t *testing.T) {
    store := newFakeLeaseStore()
    reaper := NewReaper(store)
    reaper.interval = 5 * time.Millisecond

    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan error, 1)
    go func() { done <- reaper.Run(ctx) }()

    time.Sleep(20 * time.Millisecond)
    cancel()

    select {
    case err := <-done:
        assert.ErrorIs(t, err, context.Canceled)
    case <-time.After(time.Second):
        t.Fatal("reaper did not stop after cancellation")
    }
}
