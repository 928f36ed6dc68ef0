package accounts

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// SessionContextKey is the router locals key holding the decoded session.
const SessionContextKey = "session"

const bearerScheme = "Bearer"

// SessionFromContext returns the session a ProtectedRoute middleware stored,
// nil when the request carried no valid token.
func SessionFromContext(ctx router.Context) *SessionObject {
	raw := ctx.Locals(SessionContextKey)
	if raw == nil {
		return nil
	}

	session, ok := raw.(*SessionObject)
	if !ok {
		return nil
	}

	return session
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(ctx router.Context) (string, error) {
	header := ctx.GetString("Authorization", "")
	if header == "" {
		return "", goerrors.New("missing authorization header", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) || parts[1] == "" {
		return "", goerrors.New("malformed authorization header", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	return parts[1], nil
}

// ProtectedRoute validates the bearer token and stores the decoded session
// in the request locals. Requests without a valid token get a 401 envelope.
func ProtectedRoute(auth Authenticator) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			token, err := bearerToken(ctx)
			if err != nil {
				return respondError(ctx, err)
			}

			session, err := auth.SessionFromToken(token)
			if err != nil {
				return respondError(ctx, err)
			}

			ctx.Locals(SessionContextKey, session)

			return next(ctx)
		}
	}
}

// RequireRole gates a route on role membership. It assumes ProtectedRoute
// already ran; a missing session yields 401, a missing role 403.
func RequireRole(role string) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			session := SessionFromContext(ctx)
			if session == nil {
				return respondError(ctx, ErrUnauthorized)
			}

			if !session.HasRole(role) {
				return respondError(ctx, goerrors.New(
					"insufficient permissions",
					goerrors.CategoryAuth,
				).WithCode(goerrors.CodeForbidden))
			}

			return next(ctx)
		}
	}
}
