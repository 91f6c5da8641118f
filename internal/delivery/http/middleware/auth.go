package middleware

import (
	"context"
	"net/http"
	"strings"

	h "clubportal/internal/delivery/http/helpers"
	"clubportal/internal/domain"
)

type contextKey string

const memberIDKey contextKey = "memberID"

// SetMemberID returns a context with the member ID set. Used by auth middleware.
func SetMemberID(ctx context.Context, memberID string) context.Context {
	return context.WithValue(ctx, memberIDKey, memberID)
}

// MemberIDFromContext returns the authenticated member ID from the context, if present.
func MemberIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(memberIDKey).(string)
	return id, ok
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the member ID
// in the request context. If the token is missing or invalid, it responds with 401 and
// does not call next.
func RequireAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			memberID, ok := bearerMemberID(r, verifier)
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing or invalid token")
				return
			}
			r = r.WithContext(SetMemberID(r.Context(), memberID))
			next(w, r)
		}
	}
}

// OptionalAuth sets the member ID in the context when a valid Bearer token is present,
// and calls next either way. Registration endpoints use it so guest (name-based) flows
// work without a session.
func OptionalAuth(verifier domain.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if memberID, ok := bearerMemberID(r, verifier); ok {
				r = r.WithContext(SetMemberID(r.Context(), memberID))
			}
			next(w, r)
		}
	}
}

func bearerMemberID(r *http.Request, verifier domain.TokenVerifier) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", false
	}
	memberID, err := verifier.Verify(token)
	if err != nil {
		return "", false
	}
	return memberID, true
}
