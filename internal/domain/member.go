package domain

import (
	"context"
	"time"
)

// Member represents an association member.
// swagger:model Member
type Member struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"-"`
	Salt         string `json:"-"`

	// IsAdmin marks administrator-equivalent members; they manage every event.
	IsAdmin bool `json:"is_admin"`
	// OverrideOrganiser is an explicit capability to manage events regardless of
	// committee membership.
	OverrideOrganiser bool `json:"override_organiser"`
	// CanAttendEvents is false for benefactors and suspended members.
	CanAttendEvents bool `json:"can_attend_events"`

	// GroupIDs are the committees the member currently belongs to.
	GroupIDs []string `json:"group_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns "FirstName LastName" trimmed.
func (m *Member) FullName() string {
	if m.FirstName == "" {
		return m.LastName
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// InGroup reports whether the member belongs to the given committee.
func (m *Member) InGroup(groupID string) bool {
	for _, id := range m.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated member.
type TokenIssuer interface {
	Issue(memberID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated member ID.
type TokenVerifier interface {
	Verify(token string) (memberID string, err error)
}

// MemberRepository defines the interface for member storage. GetByID and GetByEmail
// return the member with their committee group IDs populated.
type MemberRepository interface {
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
}

// AuthService authenticates members and issues access tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, member *Member, err error)
}
