package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the session token payload: identity plus the roles held at
// issue time. Validity is cryptographic and time based only, nothing is
// persisted server side.
type JWTClaims struct {
	jwt.RegisteredClaims
	UniqueName string   `json:"unique_name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

// UserID returns the subject claim.
func (c *JWTClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// HasRole checks if the token carries a specific role claim.
func (c *JWTClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Expires returns the expiry time, zero if unset.
func (c *JWTClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
