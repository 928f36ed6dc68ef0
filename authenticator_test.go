package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func activeUser(t *testing.T, password string) *accounts.User {
	t.Helper()
	hash, err := accounts.HashPassword(password)
	require.NoError(t, err)

	return &accounts.User{
		ID:             uuid.New(),
		Email:          "pepe@example.com",
		Username:       "pepe",
		FirstName:      "Pepe",
		LastName:       "Rone",
		PasswordHash:   hash,
		SecurityStamp:  accounts.NewSecurityStamp(),
		EmailConfirmed: true,
		IsActive:       true,
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	newAuther := func(users *MockUsers, roles *MockRoles) *accounts.Auther {
		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users).Maybe()
		repo.On("Roles").Return(roles).Maybe()

		tokens := newTestTokenService(t)
		return accounts.NewAuthenticator(repo, tokens).WithLogger(testLogger{})
	}

	t.Run("Successful login", func(t *testing.T) {
		user := activeUser(t, "password123!")
		users := &MockUsers{}
		roles := &MockRoles{}

		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()
		roles.On("ListForUser", mock.Anything, user.ID).Return([]string{"Admin"}, nil).Once()

		auther := newAuther(users, roles)

		result, err := auther.Login(ctx, user.Email, "password123!")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.NotEmpty(t, result.Token)
		assert.Equal(t, user.ID.String(), result.UserID)
		assert.Equal(t, user.Email, result.Email)
		assert.Equal(t, "Pepe Rone", result.Name)
		assert.EqualValues(t, 3600, result.ExpiresIn)

		session, err := auther.SessionFromToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), session.GetUserID())
		assert.True(t, session.HasRole("Admin"))

		users.AssertExpectations(t)
		roles.AssertExpectations(t)
	})

	t.Run("Unknown email", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByEmail", mock.Anything, "nobody@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		auther := newAuther(users, &MockRoles{})

		result, err := auther.Login(ctx, "nobody@example.com", "password123!")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
		assert.Nil(t, result)
	})

	t.Run("Inactive account looks like bad credentials", func(t *testing.T) {
		user := activeUser(t, "password123!")
		user.IsActive = false

		users := &MockUsers{}
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()

		auther := newAuther(users, &MockRoles{})

		_, err := auther.Login(ctx, user.Email, "password123!")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	})

	t.Run("Unconfirmed email stays distinct", func(t *testing.T) {
		user := activeUser(t, "password123!")
		user.EmailConfirmed = false

		users := &MockUsers{}
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()

		auther := newAuther(users, &MockRoles{})

		_, err := auther.Login(ctx, user.Email, "password123!")
		assert.ErrorIs(t, err, accounts.ErrEmailNotConfirmed)
	})

	t.Run("Wrong password", func(t *testing.T) {
		user := activeUser(t, "password123!")

		users := &MockUsers{}
		users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()

		auther := newAuther(users, &MockRoles{})

		_, err := auther.Login(ctx, user.Email, "wrong-password")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
	})
}

func TestSessionFromToken(t *testing.T) {
	repo := &MockRepositoryManager{}
	tokens := newTestTokenService(t)
	auther := accounts.NewAuthenticator(repo, tokens).WithLogger(testLogger{})

	t.Run("Garbage token", func(t *testing.T) {
		session, err := auther.SessionFromToken("not-a-token")
		assert.Error(t, err)
		assert.Nil(t, session)
	})

	t.Run("Valid token round trips the session", func(t *testing.T) {
		user := activeUser(t, "password123!")
		raw, err := tokens.Issue(user, []string{"Admin"})
		require.NoError(t, err)

		session, err := auther.SessionFromToken(raw)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), session.GetUserID())
		assert.True(t, session.HasRole("Admin"))
		assert.False(t, session.HasRole("Owner"))
	})
}

func TestIdentityFromSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Nil session", func(t *testing.T) {
		auther := accounts.NewAuthenticator(&MockRepositoryManager{}, newTestTokenService(t))

		_, err := auther.IdentityFromSession(ctx, nil)
		assert.ErrorIs(t, err, accounts.ErrUnauthorized)
	})

	t.Run("Unknown user maps to unauthorized", func(t *testing.T) {
		users := &MockUsers{}
		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)

		id := uuid.New()
		users.On("GetByID", mock.Anything, id.String(), mock.Anything).
			Return(nil, repository.NewRecordNotFound()).Once()

		auther := accounts.NewAuthenticator(repo, newTestTokenService(t)).WithLogger(testLogger{})

		_, err := auther.IdentityFromSession(ctx, &accounts.SessionObject{UserID: id.String()})
		assert.ErrorIs(t, err, accounts.ErrUnauthorized)
	})

	t.Run("Resolves the account", func(t *testing.T) {
		user := activeUser(t, "password123!")
		users := &MockUsers{}
		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)

		users.On("GetByID", mock.Anything, user.ID.String(), mock.Anything).
			Return(user, nil).Once()

		auther := accounts.NewAuthenticator(repo, newTestTokenService(t)).WithLogger(testLogger{})

		got, err := auther.IdentityFromSession(ctx, &accounts.SessionObject{UserID: user.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})
}
