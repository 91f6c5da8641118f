package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"clubportal/internal/domain"
)

type registrationFieldRepository struct {
	DB *sql.DB
}

func NewRegistrationFieldRepository(db *sql.DB) domain.RegistrationFieldRepository {
	return &registrationFieldRepository{DB: db}
}

func (r *registrationFieldRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RegistrationInformationField, error) {
	query := `
		SELECT id, event_id, type, subject, description, required, field_order
		FROM registration_information_fields
		WHERE event_id = $1
		ORDER BY field_order, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]*domain.RegistrationInformationField, 0)
	for rows.Next() {
		f := &domain.RegistrationInformationField{}
		if err := rows.Scan(&f.ID, &f.EventID, &f.Type, &f.Subject, &f.Description, &f.Required, &f.Order); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (r *registrationFieldRepository) GetByID(ctx context.Context, fieldID string) (*domain.RegistrationInformationField, error) {
	query := `
		SELECT id, event_id, type, subject, description, required, field_order
		FROM registration_information_fields
		WHERE id = $1
	`
	f := &domain.RegistrationInformationField{}
	err := r.DB.QueryRowContext(ctx, query, fieldID).
		Scan(&f.ID, &f.EventID, &f.Type, &f.Subject, &f.Description, &f.Required, &f.Order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// SetValue upserts the answer for (registration, field). Values are stored as JSON so
// one column serves all three field types.
func (r *registrationFieldRepository) SetValue(ctx context.Context, registrationID, fieldID string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode field value: %w", err)
	}
	query := `
		INSERT INTO registration_field_values (registration_id, field_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (registration_id, field_id) DO UPDATE SET value = EXCLUDED.value
	`
	_, err = r.DB.ExecContext(ctx, query, registrationID, fieldID, encoded)
	return err
}

func (r *registrationFieldRepository) GetValues(ctx context.Context, registrationID string) (map[string]any, error) {
	query := `
		SELECT field_id, value
		FROM registration_field_values
		WHERE registration_id = $1
	`
	rows, err := r.DB.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]any)
	for rows.Next() {
		var fieldID string
		var raw []byte
		if err := rows.Scan(&fieldID, &raw); err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("decode field value: %w", err)
		}
		values[fieldID] = value
	}
	return values, rows.Err()
}
