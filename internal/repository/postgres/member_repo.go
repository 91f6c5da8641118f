package postgres

import (
	"context"
	"database/sql"
	"errors"

	"clubportal/internal/domain"
)

const memberColumns = `
	m.id, m.email, m.first_name, m.last_name, m.password_hash, m.salt,
	m.is_admin, m.override_organiser, m.can_attend_events, m.created_at, m.updated_at`

type memberRepository struct {
	DB *sql.DB
}

func NewMemberRepository(db *sql.DB) domain.MemberRepository {
	return &memberRepository{DB: db}
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members m WHERE m.id = $1`
	return r.getOne(ctx, query, id)
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members m WHERE m.email = $1`
	return r.getOne(ctx, query, email)
}

func (r *memberRepository) getOne(ctx context.Context, query string, arg any) (*domain.Member, error) {
	m := &domain.Member{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&m.ID, &m.Email, &m.FirstName, &m.LastName, &m.PasswordHash, &m.Salt,
		&m.IsAdmin, &m.OverrideOrganiser, &m.CanAttendEvents, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	groups, err := r.listGroupIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.GroupIDs = groups
	return m, nil
}

func (r *memberRepository) listGroupIDs(ctx context.Context, memberID string) ([]string, error) {
	query := `
		SELECT group_id
		FROM committee_members
		WHERE member_id = $1
		ORDER BY group_id
	`
	rows, err := r.DB.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		groups = append(groups, id)
	}
	return groups, rows.Err()
}
