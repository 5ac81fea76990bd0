package service

import (
    "context"
    "log"
    "time"
)

// ReapInterval is how often the lease reaper sweeps expired leases.
const ReapInterval = 60 * time.Second

// Reaper deletes expired seat leases on a fixed interval.  It is an
// independent background task: every failure is logged and swallowed,
// a bad tick never stops the loop or the process.  Expired leases are
// also filtered out at query time, so the reaper only reclaims
// storage; correctness does not depend on its timing.
type Reaper struct {
    leases   LeaseStore
    interval time.Duration
}

// NewReaper constructs a Reaper with the default interval.
func NewReaper(leases LeaseStore) *Reaper {
    return &Reaper{leases: leases, interval: ReapInterval}
}

// Run sweeps on every tick until the context is cancelled.  It always
// returns ctx.Err so it can run under an errgroup.
func (r *Reaper) Run(ctx context.Context) error {
    ticker := time.NewTicker(r.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-ticker.C:
            r.RunOnce(ctx)
        }
    }
}

// RunOnce performs a single reap pass.  When the lease table is empty
// the pass is a no-op.  Exposed so tests and operators can trigger a
// deterministic sweep without waiting on the ticker.
func (r *Reaper) RunOnce(ctx context.Context) {
    n, err := r.leases.Count(ctx)
    if err != nil {
        log.Printf("reaper: counting leases failed: %v", err)
        return
    }
    if n == 0 {
        return
    }
    removed, err := r.leases.DeleteExpired(ctx, time.Now().UTC())
    if err != nil {
        log.Printf("reaper: deleting expired leases failed: %v", err)
        return
    }
    if removed > 0 {
        log.Printf("reaper: %d expired seat leases cleaned up", removed)
    }
}
