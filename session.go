package accounts

import (
	"time"

	"github.com/google/uuid"
)

// SessionObject is the request-scoped identity decoded from a bearer token.
type SessionObject struct {
	UserID    string     `json:"user_id,omitempty"`
	Username  string     `json:"username,omitempty"`
	Email     string     `json:"email,omitempty"`
	Roles     []string   `json:"roles,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	Audience  []string   `json:"audience,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

// HasRole checks if the session carries a specific role claim.
func (s *SessionObject) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func sessionFromClaims(claims *JWTClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	session := &SessionObject{
		UserID:   claims.UserID(),
		Username: claims.UniqueName,
		Email:    claims.Email,
		Roles:    claims.Roles,
		Issuer:   claims.RegisteredClaims.Issuer,
		Audience: claims.RegisteredClaims.Audience,
	}

	if claims.IssuedAt != nil {
		t := claims.IssuedAt.Time
		session.IssuedAt = &t
	}

	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		session.ExpiresAt = &t
	}

	return session, nil
}
