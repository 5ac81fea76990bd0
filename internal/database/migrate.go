package database

import (
	"context"
	"database/sql"
)

// schema contains the DDL for every table of the reservation core.
// The unique key on seat_leases (event_code, seat_label) is load
// bearing: it is the storage-level guarantee that at most one live
// lease exists per seat, and the conflict it raises is what concurrent
// holds lose on.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		code         VARCHAR(32)  NOT NULL,
		name         VARCHAR(255) NOT NULL,
		city         VARCHAR(128) NOT NULL DEFAULT '',
		starts_at    DATETIME     NOT NULL,
		duration_min INT UNSIGNED NOT NULL,
		created_at   DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS event_seats (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		event_code  VARCHAR(32)     NOT NULL,
		seat_label  VARCHAR(32)     NOT NULL,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_event_seat (event_code, seat_label),
		CONSTRAINT fk_event_seats_event FOREIGN KEY (event_code) REFERENCES events (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS seat_leases (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		event_code   VARCHAR(32)     NOT NULL,
		seat_label   VARCHAR(32)     NOT NULL,
		event_date   DATETIME        NOT NULL,
		duration_min INT UNSIGNED    NOT NULL,
		expires_at   DATETIME        NOT NULL,
		created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_lease_slot (event_code, seat_label),
		KEY idx_lease_expiry (expires_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		event_code     VARCHAR(32)     NOT NULL,
		user_id        VARCHAR(64)     NOT NULL,
		status         ENUM('PENDING','CONFIRMED','CANCELLED') NOT NULL DEFAULT 'PENDING',
		payment_status ENUM('PENDING','COMPLETED','FAILED')    NOT NULL DEFAULT 'PENDING',
		seat_price     INT UNSIGNED    NOT NULL,
		total_price    INT UNSIGNED    NOT NULL,
		payment_id     VARCHAR(64)     NULL,
		payment_date   DATETIME        NULL,
		event_date     DATETIME        NOT NULL,
		duration_min   INT UNSIGNED    NOT NULL,
		created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		canceled_at    DATETIME        NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_payment_id (payment_id),
		KEY idx_booking_event_status (event_code, status, payment_status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS booking_seats (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		booking_id BIGINT UNSIGNED NOT NULL,
		event_code VARCHAR(32)     NOT NULL,
		seat_label VARCHAR(32)     NOT NULL,
		PRIMARY KEY (id),
		KEY idx_booking_seats_booking (booking_id),
		KEY idx_booking_seats_event (event_code, seat_label),
		CONSTRAINT fk_booking_seats_booking FOREIGN KEY (booking_id) REFERENCES bookings (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS prices (
		event_code VARCHAR(32)  NOT NULL,
		seat_price INT UNSIGNED NOT NULL,
		currency   VARCHAR(8)   NOT NULL DEFAULT 'RS',
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (event_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the schema when it does not exist yet.  Statements
// are idempotent, so running it on every startup is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
