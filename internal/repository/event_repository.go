package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/event-seat-inventory/internal/model"
)

// EventRepo provides data access to the events and event_seats tables.
// Seat membership is append-only: AddSeats unions new labels into the
// set and nothing ever deletes them.  All timestamps are UTC.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the provided database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Create inserts a new event together with its initial seat set.  The
// event and its seats are written in one transaction so a half-created
// event is never observable.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
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
    const q = `INSERT INTO events (code, name, city, starts_at, duration_min) VALUES (?, ?, ?, ?, ?)`
    if _, err := tx.ExecContext(ctx, q,
        ev.Code, ev.Name, ev.City, ev.StartsAt.UTC().Format(mysqlDatetime), ev.DurationMin,
    ); err != nil {
        return err
    }
    if err := insertSeatRows(ctx, tx, ev.Code, ev.Seats); err != nil {
        return err
    }
    if err := tx.QueryRowContext(ctx, `SELECT created_at FROM events WHERE code = ?`, ev.Code).Scan(&ev.CreatedAt); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// FindByCode loads an event and its seat labels.  Returns
// ErrEventNotFound when no row exists for the code.
func (r *EventRepo) FindByCode(ctx context.Context, code string) (*model.Event, error) {
    const q = `SELECT code, name, city, starts_at, duration_min, created_at FROM events WHERE code = ?`
    var ev model.Event
    err := r.db.QueryRowContext(ctx, q, code).Scan(
        &ev.Code, &ev.Name, &ev.City, &ev.StartsAt, &ev.DurationMin, &ev.CreatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrEventNotFound
        }
        return nil, err
    }
    seats, err := r.ListSeats(ctx, code)
    if err != nil {
        return nil, err
    }
    ev.Seats = seats
    return &ev, nil
}

// ListSeats returns all seat labels of an event ordered by insertion.
func (r *EventRepo) ListSeats(ctx context.Context, code string) ([]string, error) {
    const q = `SELECT seat_label FROM event_seats WHERE event_code = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, code)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := make([]string, 0)
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

// AddSeats unions the given seat labels into the event's seat set and
// overwrites the event's date and duration with the supplied values.
// Labels already present are silently ignored (INSERT IGNORE).  It
// returns the number of labels actually added and the post-insert seat
// total.  Returns ErrEventNotFound when the event does not exist.
func (r *EventRepo) AddSeats(ctx context.Context, code string, seats []string, eventDate time.Time, durationMin uint32) (added int64, total int64, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    res, err := tx.ExecContext(ctx,
        `UPDATE events SET starts_at = ?, duration_min = ? WHERE code = ?`,
        eventDate.UTC().Format(mysqlDatetime), durationMin, code,
    )
    if err != nil {
        return 0, 0, err
    }
    matched, err := res.RowsAffected()
    if err != nil {
        return 0, 0, err
    }
    // MySQL reports 0 affected rows both for a missing event and for an
    // unchanged one, so verify existence explicitly in the latter case.
    if matched == 0 {
        var one int
        if err := tx.QueryRowContext(ctx, `SELECT 1 FROM events WHERE code = ?`, code).Scan(&one); err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return 0, 0, ErrEventNotFound
            }
            return 0, 0, err
        }
    }
    if len(seats) > 0 {
        query := `INSERT IGNORE INTO event_seats (event_code, seat_label) VALUES `
        args := make([]interface{}, 0, len(seats)*2)
        for i, s := range seats {
            if i > 0 {
                query += ","
            }
            query += "(?, ?)"
            args = append(args, code, s)
        }
        ins, err := tx.ExecContext(ctx, query, args...)
        if err != nil {
            return 0, 0, err
        }
        if added, err = ins.RowsAffected(); err != nil {
            return 0, 0, err
        }
    }
    if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_seats WHERE event_code = ?`, code).Scan(&total); err != nil {
        return 0, 0, err
    }
    if err := tx.Commit(); err != nil {
        return 0, 0, err
    }
    committed = true
    return added, total, nil
}

// insertSeatRows bulk inserts seat labels for an event within an
// existing transaction, ignoring duplicates.
func insertSeatRows(ctx context.Context, tx *sql.Tx, code string, seats []string) error {
    if len(seats) == 0 {
        return nil
    }
    query := `INSERT IGNORE INTO event_seats (event_code, seat_label) VALUES `
    args := make([]interface{}, 0, len(seats)*2)
    for i, s := range seats {
        if i > 0 {
            query += ","
        }
        query += "(?, ?)"
        args = append(args, code, s)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}
