package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist. The partial unique indexes on
// event_registrations are load-bearing: they guarantee at most one active
// registration per (event, member) and per (event, guest name), so a concurrent
// duplicate create fails at the store level.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		`CREATE TABLE IF NOT EXISTS members (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			email TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			salt TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			override_organiser BOOLEAN NOT NULL DEFAULT FALSE,
			can_attend_events BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS committees (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			name TEXT NOT NULL,
			contact_email TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS committee_members (
			group_id TEXT NOT NULL REFERENCES committees(id) ON DELETE CASCADE,
			member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			PRIMARY KEY (group_id, member_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			start_at TIMESTAMPTZ NOT NULL,
			end_at TIMESTAMPTZ NOT NULL,
			registration_start TIMESTAMPTZ,
			registration_end TIMESTAMPTZ,
			cancel_deadline TIMESTAMPTZ,
			max_participants INTEGER,
			optional_registration_allowed BOOLEAN NOT NULL DEFAULT FALSE,
			send_cancel_email BOOLEAN NOT NULL DEFAULT TRUE,
			organiser_group_id TEXT NOT NULL REFERENCES committees(id),
			organiser_email TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			registration_id TEXT NOT NULL,
			type TEXT NOT NULL,
			processed_by TEXT NOT NULL REFERENCES members(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS event_registrations (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			member_id TEXT REFERENCES members(id) ON DELETE SET NULL,
			name TEXT NOT NULL DEFAULT '',
			date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			date_cancelled TIMESTAMPTZ,
			present BOOLEAN NOT NULL DEFAULT FALSE,
			payment_id TEXT REFERENCES payments(id) ON DELETE SET NULL,
			CHECK (member_id IS NOT NULL OR name <> '')
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_active_member_registration
			ON event_registrations (event_id, member_id)
			WHERE date_cancelled IS NULL AND member_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_active_guest_registration
			ON event_registrations (event_id, name)
			WHERE date_cancelled IS NULL AND member_id IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_event_active
			ON event_registrations (event_id, date, id)
			WHERE date_cancelled IS NULL`,
		`CREATE TABLE IF NOT EXISTS registration_information_fields (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			type TEXT NOT NULL CHECK (type IN ('integer', 'boolean', 'text')),
			subject TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			required BOOLEAN NOT NULL DEFAULT FALSE,
			field_order INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS registration_field_values (
			registration_id TEXT NOT NULL REFERENCES event_registrations(id) ON DELETE CASCADE,
			field_id TEXT NOT NULL REFERENCES registration_information_fields(id) ON DELETE CASCADE,
			value JSONB NOT NULL,
			PRIMARY KEY (registration_id, field_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
