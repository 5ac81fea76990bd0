package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/event-seat-inventory/internal/model"
)

// PriceRepo provides data access to the prices table.  There is at
// most one price row per event; Upsert either creates it or bumps the
// existing one.
type PriceRepo struct {
    db *sql.DB
}

// NewPriceRepo returns a new PriceRepo bound to the provided database.
func NewPriceRepo(db *sql.DB) *PriceRepo { return &PriceRepo{db: db} }

// Find returns the price row for an event, or nil when none has been
// set.  The absence of a row is not an error: callers fall back to the
// default seat price.
func (r *PriceRepo) Find(ctx context.Context, eventCode string) (*model.Price, error) {
    const q = `SELECT event_code, seat_price, currency, created_at, updated_at FROM prices WHERE event_code = ?`
    var p model.Price
    err := r.db.QueryRowContext(ctx, q, eventCode).Scan(
        &p.EventCode, &p.SeatPrice, &p.Currency, &p.CreatedAt, &p.UpdatedAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, nil
        }
        return nil, err
    }
    return &p, nil
}

// Upsert creates or updates the price row for an event.  The currency
// is fixed; updated_at is refreshed by the database on change.
func (r *PriceRepo) Upsert(ctx context.Context, eventCode string, seatPrice uint32) error {
    const q = `INSERT INTO prices (event_code, seat_price, currency)
               VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE seat_price = VALUES(seat_price), updated_at = CURRENT_TIMESTAMP`
    _, err := r.db.ExecContext(ctx, q, eventCode, seatPrice, model.DefaultCurrency)
    return err
}
