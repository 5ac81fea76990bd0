package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/event-seat-inventory/internal/model"
)

// BookingRepo provides data access to the bookings and booking_seats
// tables.  A booking's seat list is written once at creation and never
// mutated afterwards; status transitions happen through UpdatePayment
// and MarkCancelled.  All timestamps are UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts a booking together with its seat rows in a single
// transaction and populates the generated ID and CreatedAt on the
// provided record.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
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
    const q = `INSERT INTO bookings
               (event_code, user_id, status, payment_status, seat_price, total_price, event_date, duration_min)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        b.EventCode, b.UserID, b.Status, b.PaymentStatus, b.SeatPrice, b.TotalPrice,
        b.EventDate.UTC().Format(mysqlDatetime), b.DurationMin,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    if len(b.Seats) > 0 {
        query := `INSERT INTO booking_seats (booking_id, event_code, seat_label) VALUES `
        args := make([]interface{}, 0, len(b.Seats)*3)
        for i, s := range b.Seats {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?)"
            args = append(args, b.ID, b.EventCode, s)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    if err := tx.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// FindByID loads a booking and its ordered seat list.  Returns
// ErrBookingNotFound when no row exists.
func (r *BookingRepo) FindByID(ctx context.Context, id uint64) (*model.Booking, error) {
    const q = `SELECT id, event_code, user_id, status, payment_status, seat_price, total_price,
                      payment_id, payment_date, event_date, duration_min, created_at, canceled_at
               FROM bookings WHERE id = ?`
    var b model.Booking
    var paymentID sql.NullString
    var paymentDate, canceledAt sql.NullTime
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &b.ID, &b.EventCode, &b.UserID, &b.Status, &b.PaymentStatus, &b.SeatPrice, &b.TotalPrice,
        &paymentID, &paymentDate, &b.EventDate, &b.DurationMin, &b.CreatedAt, &canceledAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    if paymentID.Valid {
        pid := paymentID.String
        b.PaymentID = &pid
    }
    if paymentDate.Valid {
        pd := paymentDate.Time
        b.PaymentDate = &pd
    }
    if canceledAt.Valid {
        ca := canceledAt.Time
        b.CanceledAt = &ca
    }
    const seatQ = `SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, seatQ, id)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var s string
        if err := rows.Scan(&s); err != nil {
            return nil, err
        }
        b.Seats = append(b.Seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return &b, nil
}

// BookedSeats returns the seat labels of an event that belong to
// bookings in the given status and payment status.  The result may
// contain duplicates when the data violates invariants; callers apply
// set semantics.
func (r *BookingRepo) BookedSeats(ctx context.Context, eventCode, status, paymentStatus string) ([]string, error) {
    const q = `SELECT bs.seat_label
               FROM booking_seats bs
               JOIN bookings b ON b.id = bs.booking_id
               WHERE b.event_code = ? AND b.status = ? AND b.payment_status = ?`
    rows, err := r.db.QueryContext(ctx, q, eventCode, status, paymentStatus)
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

// UpdatePayment records a completed payment: payment status COMPLETED,
// booking status CONFIRMED, payment reference and date.  Returns
// ErrBookingNotFound when the booking does not exist.
func (r *BookingRepo) UpdatePayment(ctx context.Context, id uint64, paymentID string, paymentDate time.Time) error {
    const q = `UPDATE bookings
               SET payment_status = ?, status = ?, payment_id = ?, payment_date = ?
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.PaymentCompleted, model.BookingConfirmed, paymentID,
        paymentDate.UTC().Format(mysqlDatetime), id,
    )
    if err != nil {
        return err
    }
    return requireRow(ctx, r.db, res, id)
}

// MarkCancelled sets the booking status to CANCELLED and records the
// cancellation time.  Returns ErrBookingNotFound when the booking does
// not exist.
func (r *BookingRepo) MarkCancelled(ctx context.Context, id uint64, canceledAt time.Time) error {
    const q = `UPDATE bookings SET status = ?, canceled_at = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q,
        model.BookingCancelled, canceledAt.UTC().Format(mysqlDatetime), id,
    )
    if err != nil {
        return err
    }
    return requireRow(ctx, r.db, res, id)
}

// requireRow maps a zero-affected-rows update to ErrBookingNotFound,
// tolerating updates that matched a row but changed nothing.
func requireRow(ctx context.Context, db *sql.DB, res sql.Result, id uint64) error {
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n > 0 {
        return nil
    }
    var one int
    if err := db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&one); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrBookingNotFound
        }
        return err
    }
    return nil
}
