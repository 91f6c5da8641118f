package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clubportal/internal/domain"
)

type authService struct {
	memberRepo domain.MemberRepository
	hasher     domain.PasswordHasher
	tokens     domain.TokenIssuer
	expiry     time.Duration
}

// NewAuthService creates an AuthService with the given repository, hasher, and token
// issuer.
func NewAuthService(memberRepo domain.MemberRepository, hasher domain.PasswordHasher, tokens domain.TokenIssuer, expiry time.Duration) domain.AuthService {
	return &authService{
		memberRepo: memberRepo,
		hasher:     hasher,
		tokens:     tokens,
		expiry:     expiry,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Member, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	member, err := s.memberRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	if err := s.hasher.Compare(member.PasswordHash, member.Salt, password); err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}
	token, err := s.tokens.Issue(member.ID, member.Email, s.expiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, member, nil
}
