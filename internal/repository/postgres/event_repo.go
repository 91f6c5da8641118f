package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clubportal/internal/domain"
)

const eventColumns = `
	e.id, e.title, e.description, e.location, e.start_at, e.end_at,
	e.registration_start, e.registration_end, e.cancel_deadline, e.max_participants,
	e.optional_registration_allowed, e.send_cancel_email,
	e.organiser_group_id, e.organiser_email, e.created_at, e.updated_at,
	EXISTS (
		SELECT 1 FROM registration_information_fields f WHERE f.event_id = e.id
	) AS has_fields`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (
			title, description, location, start_at, end_at,
			registration_start, registration_end, cancel_deadline, max_participants,
			optional_registration_allowed, send_cancel_email,
			organiser_group_id, organiser_email, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Location, e.Start, e.End,
		e.RegistrationStart, e.RegistrationEnd, e.CancelDeadline, e.MaxParticipants,
		e.OptionalRegistrationAllowed, e.SendCancelEmail,
		e.OrganiserGroupID, e.OrganiserEmail, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.end_at >= $1 ORDER BY e.start_at, e.id`
	rows, err := r.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var regStart, regEnd, cancelDeadline sql.NullTime
	var maxParticipants sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Start, &e.End,
		&regStart, &regEnd, &cancelDeadline, &maxParticipants,
		&e.OptionalRegistrationAllowed, &e.SendCancelEmail,
		&e.OrganiserGroupID, &e.OrganiserEmail, &e.CreatedAt, &e.UpdatedAt,
		&e.HasFields,
	)
	if err != nil {
		return nil, err
	}
	if regStart.Valid {
		e.RegistrationStart = &regStart.Time
	}
	if regEnd.Valid {
		e.RegistrationEnd = &regEnd.Time
	}
	if cancelDeadline.Valid {
		e.CancelDeadline = &cancelDeadline.Time
	}
	if maxParticipants.Valid {
		capacity := int(maxParticipants.Int64)
		e.MaxParticipants = &capacity
	}
	return e, nil
}
