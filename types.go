package accounts

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	// GetTokenExpiration is the session token lifetime in minutes.
	GetTokenExpiration() int
	// GetPurposeTokenTTL is the confirmation/reset token window in minutes.
	GetPurposeTokenTTL() int
	GetIssuer() string
	GetAudience() []string
	// GetClientBaseURL is the frontend origin used to build email links.
	GetClientBaseURL() string
	// GetExposeDebugLinks leaks confirmation/reset links into API responses.
	// Development convenience only; keep off in production.
	GetExposeDebugLinks() bool
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	SessionFromToken(token string) (*SessionObject, error)
	IdentityFromSession(ctx context.Context, session *SessionObject) (*User, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
