package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"clubportal/internal/domain"
)

// RedactedName replaces the free-text name on registrations scrubbed by the data
// minimisation sweep.
const RedactedName = "<removed>"

const registrationColumns = `
	r.id, r.event_id, r.member_id, r.name, r.date, r.date_cancelled, r.present, r.payment_id`

type eventRegistrationRepository struct {
	DB *sql.DB
}

func NewEventRegistrationRepository(db *sql.DB) domain.EventRegistrationRepository {
	return &eventRegistrationRepository{
		DB: db,
	}
}

// Create inserts the registration inside a transaction that locks the event row, so
// queue-relevant inserts for one event are serialised. The partial unique indexes on
// active registrations turn a concurrent duplicate into ErrDuplicateRegistration.
func (r *eventRegistrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var eventID string
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM events WHERE id = $1 FOR UPDATE`, reg.EventID,
	).Scan(&eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}

	query := `
		INSERT INTO event_registrations (event_id, member_id, name, date, present)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		reg.EventID, reg.MemberID, reg.Name, reg.Date, reg.Present,
	).Scan(&reg.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateRegistration
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return tx.Commit()
}

func (r *eventRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations r WHERE r.id = $1`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *eventRegistrationRepository) GetByEventAndMember(ctx context.Context, eventID, memberID string) (*domain.EventRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM event_registrations r
		WHERE r.event_id = $1 AND r.member_id = $2
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, memberID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

// GetByEventMemberName looks up by the (event, member, name) composite key. An empty
// memberID matches guest registrations (NULL member). More than one match returns
// ErrAmbiguous, never a silent first-match.
func (r *eventRegistrationRepository) GetByEventMemberName(ctx context.Context, eventID, memberID, name string) (*domain.EventRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM event_registrations r
		WHERE r.event_id = $1
		  AND r.member_id IS NOT DISTINCT FROM NULLIF($2, '')
		  AND r.name = $3
		ORDER BY r.date, r.id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, memberID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*domain.EventRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(regs) {
	case 0:
		return nil, domain.ErrNotFound
	case 1:
		return regs[0], nil
	default:
		return nil, domain.ErrAmbiguous
	}
}

func (r *eventRegistrationRepository) ListActiveByEventID(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM event_registrations r
		WHERE r.event_id = $1 AND r.date_cancelled IS NULL
		ORDER BY r.date, r.id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.EventRegistration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *eventRegistrationRepository) Update(ctx context.Context, reg *domain.EventRegistration) error {
	query := `
		UPDATE event_registrations
		SET member_id = $1, name = $2, date = $3, date_cancelled = $4, present = $5, payment_id = $6
		WHERE id = $7
	`
	result, err := r.DB.ExecContext(ctx, query,
		reg.MemberID, reg.Name, reg.Date, reg.DateCancelled, reg.Present, reg.PaymentID, reg.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const scrubPredicate = `
	r.event_id IN (SELECT e.id FROM events e WHERE e.end_at <= $1)
	AND (r.payment_id IS NOT NULL OR r.member_id IS NOT NULL OR r.name <> $2)`

func (r *eventRegistrationRepository) ScrubEndedBefore(ctx context.Context, cutoff time.Time, dryRun bool) ([]*domain.EventRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM event_registrations r
		WHERE ` + scrubPredicate + `
		ORDER BY r.date, r.id
	`
	rows, err := r.DB.QueryContext(ctx, query, cutoff, RedactedName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.EventRegistration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if dryRun {
		return regs, nil
	}

	update := `
		UPDATE event_registrations r
		SET payment_id = NULL, member_id = NULL, name = $2
		WHERE ` + scrubPredicate
	if _, err := r.DB.ExecContext(ctx, update, cutoff, RedactedName); err != nil {
		return nil, err
	}
	return regs, nil
}

func scanRegistration(row rowScanner) (*domain.EventRegistration, error) {
	reg := &domain.EventRegistration{}
	var memberID, paymentID sql.NullString
	var dateCancelled sql.NullTime
	err := row.Scan(
		&reg.ID, &reg.EventID, &memberID, &reg.Name, &reg.Date,
		&dateCancelled, &reg.Present, &paymentID,
	)
	if err != nil {
		return nil, err
	}
	if memberID.Valid {
		reg.MemberID = &memberID.String
	}
	if dateCancelled.Valid {
		reg.DateCancelled = &dateCancelled.Time
	}
	if paymentID.Valid {
		reg.PaymentID = &paymentID.String
	}
	return reg, nil
}
