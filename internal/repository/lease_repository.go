package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/event-seat-inventory/internal/model"
)

// mysqlDatetime is the layout used when writing DATETIME columns.  Reads
// come back as time.Time because the DSN sets parseTime=true&loc=UTC.
const mysqlDatetime = "2006-01-02 15:04:05"

// mysqlErrDuplicateEntry is the server error number raised when an
// insert violates a unique key.
const mysqlErrDuplicateEntry = 1062

// LeaseRepo provides data access to the seat_leases table.  A row in
// seat_leases is the exclusive hold slot for one (event, seat) pair:
// the table carries a unique key on (event_code, seat_label), so two
// concurrent flows trying to lease the same seat cannot both succeed;
// the loser receives ErrLeaseConflict.  All timestamps are UTC.
type LeaseRepo struct {
    db *sql.DB
}

// NewLeaseRepo returns a new LeaseRepo bound to the provided database.
func NewLeaseRepo(db *sql.DB) *LeaseRepo { return &LeaseRepo{db: db} }

// FindActive returns the unexpired leases for the given seats of an
// event.  Seats without an active lease are simply absent from the
// result.  Passing an empty seat list returns an empty slice.
func (r *LeaseRepo) FindActive(ctx context.Context, eventCode string, seats []string, now time.Time) ([]model.Lease, error) {
    if len(seats) == 0 {
        return []model.Lease{}, nil
    }
    query := `SELECT id, event_code, seat_label, event_date, duration_min, expires_at, created_at
              FROM seat_leases
              WHERE event_code = ? AND expires_at > ? AND seat_label IN (` + placeholders(len(seats)) + `)`
    args := make([]interface{}, 0, len(seats)+2)
    args = append(args, eventCode, now.UTC().Format(mysqlDatetime))
    for _, s := range seats {
        args = append(args, s)
    }
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var leases []model.Lease
    for rows.Next() {
        var l model.Lease
        if err := rows.Scan(&l.ID, &l.EventCode, &l.SeatLabel, &l.EventDate, &l.DurationMin, &l.ExpiresAt, &l.CreatedAt); err != nil {
            return nil, err
        }
        leases = append(leases, l)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return leases, nil
}

// ActiveSeats returns the labels of all seats of an event that carry an
// unexpired lease at the given instant.  Used by the availability
// engine; the read is a point-in-time snapshot, not serialized against
// concurrent writers.
func (r *LeaseRepo) ActiveSeats(ctx context.Context, eventCode string, now time.Time) ([]string, error) {
    const q = `SELECT seat_label FROM seat_leases WHERE event_code = ? AND expires_at > ?`
    rows, err := r.db.QueryContext(ctx, q, eventCode, now.UTC().Format(mysqlDatetime))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seats []string
    for rows.Next() {
        var s string
        if err := rows.Scan(&s); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}

// CreateLeases inserts all given leases atomically.  Within a single
// transaction it first purges expired rows occupying the requested
// slots, then inserts every lease in one multi-row statement.  Either
// every lease is created or none is; a duplicate-key error means some
// seat already has a live lease and is reported as ErrLeaseConflict.
func (r *LeaseRepo) CreateLeases(ctx context.Context, leases []model.Lease) error {
    if len(leases) == 0 {
        return nil
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Free slots held by expired leases so the unique key only ever
    // rejects genuinely live holds.
    now := time.Now().UTC().Format(mysqlDatetime)
    delQuery := `DELETE FROM seat_leases WHERE event_code = ? AND expires_at <= ? AND seat_label IN (` + placeholders(len(leases)) + `)`
    delArgs := make([]interface{}, 0, len(leases)+2)
    delArgs = append(delArgs, leases[0].EventCode, now)
    for _, l := range leases {
        delArgs = append(delArgs, l.SeatLabel)
    }
    if _, err := tx.ExecContext(ctx, delQuery, delArgs...); err != nil {
        return err
    }

    query := `INSERT INTO seat_leases (event_code, seat_label, event_date, duration_min, expires_at) VALUES `
    args := make([]interface{}, 0, len(leases)*5)
    for i, l := range leases {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?)"
        args = append(args,
            l.EventCode,
            l.SeatLabel,
            l.EventDate.UTC().Format(mysqlDatetime),
            l.DurationMin,
            l.ExpiresAt.UTC().Format(mysqlDatetime),
        )
    }
    if _, err := tx.ExecContext(ctx, query, args...); err != nil {
        return leaseInsertError(err)
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// DeleteLeases removes the lease rows for the given seats of an event,
// expired or not.  Returns the number of rows removed.
func (r *LeaseRepo) DeleteLeases(ctx context.Context, eventCode string, seats []string) (int64, error) {
    if len(seats) == 0 {
        return 0, nil
    }
    query := `DELETE FROM seat_leases WHERE event_code = ? AND seat_label IN (` + placeholders(len(seats)) + `)`
    args := make([]interface{}, 0, len(seats)+1)
    args = append(args, eventCode)
    for _, s := range seats {
        args = append(args, s)
    }
    res, err := r.db.ExecContext(ctx, query, args...)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// DeleteExpired removes every lease whose expiry lies strictly before
// the given instant and returns the number of rows removed.  The lease
// reaper calls this on every tick.
func (r *LeaseRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM seat_leases WHERE expires_at < ?`,
        now.UTC().Format(mysqlDatetime),
    )
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// Count returns the total number of lease rows, expired ones included.
func (r *LeaseRepo) Count(ctx context.Context) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seat_leases`).Scan(&n)
    return n, err
}

// leaseInsertError translates a duplicate-key error on the lease slot
// unique key into ErrLeaseConflict; any other error passes through
// untouched.
func leaseInsertError(err error) error {
    var me *mysql.MySQLError
    if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
        return ErrLeaseConflict
    }
    return err
}

// placeholders builds a comma separated list of n "?" markers for IN
// clauses.
func placeholders(n int) string {
    if n <= 0 {
        return ""
    }
    return strings.Repeat("?,", n-1) + "?"
}
