package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// captureJSON wires a JSON expectation that records the rendered status and
// envelope so assertions can inspect what the middleware returned.
func captureJSON(ctx *router.MockContext, status *int, resp *accounts.Response) {
	ctx.On("JSON", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		*status = args.Int(0)
		if envelope, ok := args.Get(1).(accounts.Response); ok {
			*resp = envelope
		}
	}).Return(nil).Maybe()
}

func noopHandler(called *bool) router.HandlerFunc {
	return func(ctx router.Context) error {
		*called = true
		return nil
	}
}

func TestProtectedRoute(t *testing.T) {
	session := &accounts.SessionObject{
		UserID: "2f1a1f7e-0000-0000-0000-000000000000",
		Roles:  []string{accounts.RoleAdmin},
	}

	t.Run("Stores the session and calls through", func(t *testing.T) {
		auther := &MockAuthenticator{}
		auther.On("SessionFromToken", "good-token").Return(session, nil).Once()

		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer good-token"
		ctx.On("GetString", "Authorization", "").Return("Bearer good-token")
		ctx.On("Locals", accounts.SessionContextKey, session).Return(nil).Once()

		var called bool
		err := accounts.ProtectedRoute(auther)(noopHandler(&called))(ctx)
		require.NoError(t, err)
		assert.True(t, called)

		ctx.AssertExpectations(t)
		auther.AssertExpectations(t)
	})

	t.Run("Scheme match is case-insensitive", func(t *testing.T) {
		auther := &MockAuthenticator{}
		auther.On("SessionFromToken", "good-token").Return(session, nil).Once()

		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "bearer good-token"
		ctx.On("GetString", "Authorization", "").Return("bearer good-token")
		ctx.On("Locals", accounts.SessionContextKey, session).Return(nil).Once()

		var called bool
		err := accounts.ProtectedRoute(auther)(noopHandler(&called))(ctx)
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("Missing header stops at 401", func(t *testing.T) {
		auther := &MockAuthenticator{}

		ctx := router.NewMockContext()
		ctx.On("GetString", "Authorization", "").Return("")

		var status int
		var resp accounts.Response
		captureJSON(ctx, &status, &resp)

		var called bool
		err := accounts.ProtectedRoute(auther)(noopHandler(&called))(ctx)
		require.NoError(t, err)

		assert.False(t, called)
		assert.Equal(t, router.StatusUnauthorized, status)
		assert.False(t, resp.IsSuccess)

		auther.AssertNotCalled(t, "SessionFromToken", mock.Anything)
	})

	t.Run("Malformed header stops at 401", func(t *testing.T) {
		for _, header := range []string{"good-token", "Basic good-token", "Bearer "} {
			auther := &MockAuthenticator{}

			ctx := router.NewMockContext()
			ctx.HeadersM["Authorization"] = header
			ctx.On("GetString", "Authorization", "").Return(header)

			var status int
			var resp accounts.Response
			captureJSON(ctx, &status, &resp)

			var called bool
			err := accounts.ProtectedRoute(auther)(noopHandler(&called))(ctx)
			require.NoError(t, err)

			assert.False(t, called, "header %q should not pass", header)
			assert.Equal(t, router.StatusUnauthorized, status)
		}
	})

	t.Run("Bad token stops at 401", func(t *testing.T) {
		auther := &MockAuthenticator{}
		auther.On("SessionFromToken", "bad-token").
			Return(nil, accounts.ErrTokenExpired).Once()

		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer bad-token"
		ctx.On("GetString", "Authorization", "").Return("Bearer bad-token")

		var status int
		var resp accounts.Response
		captureJSON(ctx, &status, &resp)

		var called bool
		err := accounts.ProtectedRoute(auther)(noopHandler(&called))(ctx)
		require.NoError(t, err)

		assert.False(t, called)
		assert.Equal(t, router.StatusUnauthorized, status)
	})
}

func TestRequireRole(t *testing.T) {
	t.Run("Passes with the role", func(t *testing.T) {
		session := &accounts.SessionObject{Roles: []string{accounts.RoleAdmin}}

		ctx := router.NewMockContext()
		ctx.LocalsMock[accounts.SessionContextKey] = session
		ctx.On("Locals", accounts.SessionContextKey).Return(session).Maybe()

		var called bool
		err := accounts.RequireRole(accounts.RoleAdmin)(noopHandler(&called))(ctx)
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("Missing role is forbidden", func(t *testing.T) {
		session := &accounts.SessionObject{Roles: []string{"Editor"}}

		ctx := router.NewMockContext()
		ctx.LocalsMock[accounts.SessionContextKey] = session
		ctx.On("Locals", accounts.SessionContextKey).Return(session).Maybe()

		var status int
		var resp accounts.Response
		captureJSON(ctx, &status, &resp)

		var called bool
		err := accounts.RequireRole(accounts.RoleAdmin)(noopHandler(&called))(ctx)
		require.NoError(t, err)

		assert.False(t, called)
		assert.Equal(t, router.StatusForbidden, status)
	})

	t.Run("No session is unauthorized", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("Locals", accounts.SessionContextKey).Return(nil).Maybe()

		var status int
		var resp accounts.Response
		captureJSON(ctx, &status, &resp)

		var called bool
		err := accounts.RequireRole(accounts.RoleAdmin)(noopHandler(&called))(ctx)
		require.NoError(t, err)

		assert.False(t, called)
		assert.Equal(t, router.StatusUnauthorized, status)
	})
}

func TestResponseEnvelope(t *testing.T) {
	t.Run("OKResponse", func(t *testing.T) {
		resp := accounts.OKResponse("Login successful", map[string]any{"token": "abc"})

		assert.Equal(t, router.StatusOK, resp.StatusCode)
		assert.True(t, resp.IsSuccess)
		assert.Equal(t, "Login successful", resp.Message)
		assert.NotNil(t, resp.Result)
	})

	t.Run("FailResponse", func(t *testing.T) {
		resp := accounts.FailResponse(router.StatusBadRequest, "Invalid credentials")

		assert.Equal(t, router.StatusBadRequest, resp.StatusCode)
		assert.False(t, resp.IsSuccess)
		assert.Nil(t, resp.Result)
	})
}
