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

func TestSeedRoles(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates missing roles", func(t *testing.T) {
		roles := &MockRoles{}
		repo := &MockRepositoryManager{}
		repo.On("Roles").Return(roles)

		roles.On("GetByName", mock.Anything, accounts.RoleAdmin).
			Return(nil, repository.NewRecordNotFound()).Once()
		roles.On("Create", mock.Anything, mock.Anything).
			Return(&accounts.Role{ID: uuid.New(), Name: accounts.RoleAdmin}, nil).
			Run(func(args mock.Arguments) {
				r := args.Get(1).(*accounts.Role)
				assert.Equal(t, accounts.RoleAdmin, r.Name)
			}).Once()

		seeder := accounts.NewSeeder(repo).WithLogger(testLogger{})
		require.NoError(t, seeder.SeedRoles(ctx))

		roles.AssertExpectations(t)
	})

	t.Run("Existing roles are left alone", func(t *testing.T) {
		roles := &MockRoles{}
		repo := &MockRepositoryManager{}
		repo.On("Roles").Return(roles)

		roles.On("GetByName", mock.Anything, accounts.RoleAdmin).
			Return(&accounts.Role{ID: uuid.New(), Name: accounts.RoleAdmin}, nil).Once()

		seeder := accounts.NewSeeder(repo).WithLogger(testLogger{})
		require.NoError(t, seeder.SeedRoles(ctx))

		roles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSeedAdminUser(t *testing.T) {
	ctx := context.Background()
	adminRole := &accounts.Role{ID: uuid.New(), Name: accounts.RoleAdmin}

	t.Run("Creates the bootstrap admin", func(t *testing.T) {
		users := &MockUsers{}
		roles := &MockRoles{}
		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)
		repo.On("Roles").Return(roles)

		admin := &accounts.User{
			ID:             uuid.New(),
			Email:          "admin@example.com",
			EmailConfirmed: true,
			IsActive:       true,
		}

		roles.On("GetByName", mock.Anything, accounts.RoleAdmin).Return(adminRole, nil).Once()
		users.On("GetByEmail", mock.Anything, "admin@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()
		users.On("Register", mock.Anything, mock.Anything).
			Return(admin, nil).
			Run(func(args mock.Arguments) {
				u := args.Get(1).(*accounts.User)
				assert.True(t, u.EmailConfirmed)
				assert.True(t, u.IsActive)
				assert.NoError(t, accounts.ComparePasswordAndHash("adminPassword123!", u.PasswordHash))
			}).Once()
		roles.On("IsAssigned", mock.Anything, admin.ID, adminRole.ID).Return(false, nil).Once()
		roles.On("Assign", mock.Anything, admin.ID, adminRole.ID).Return(nil).Once()

		seeder := accounts.NewSeeder(repo).WithLogger(testLogger{})
		require.NoError(t, seeder.SeedAdminUser(ctx, "admin@example.com", "adminPassword123!"))

		users.AssertExpectations(t)
		roles.AssertExpectations(t)
	})

	t.Run("Repairs the role membership of an existing admin", func(t *testing.T) {
		users := &MockUsers{}
		roles := &MockRoles{}
		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)
		repo.On("Roles").Return(roles)

		admin := &accounts.User{ID: uuid.New(), Email: "admin@example.com"}

		roles.On("GetByName", mock.Anything, accounts.RoleAdmin).Return(adminRole, nil).Once()
		users.On("GetByEmail", mock.Anything, "admin@example.com").Return(admin, nil).Once()
		roles.On("IsAssigned", mock.Anything, admin.ID, adminRole.ID).Return(false, nil).Once()
		roles.On("Assign", mock.Anything, admin.ID, adminRole.ID).Return(nil).Once()

		seeder := accounts.NewSeeder(repo).WithLogger(testLogger{})
		require.NoError(t, seeder.SeedAdminUser(ctx, "admin@example.com", "adminPassword123!"))

		users.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		roles.AssertExpectations(t)
	})

	t.Run("Missing credentials are rejected", func(t *testing.T) {
		seeder := accounts.NewSeeder(&MockRepositoryManager{})
		assert.Error(t, seeder.SeedAdminUser(ctx, "", ""))
	})

	t.Run("Fully seeded run is a no-op", func(t *testing.T) {
		users := &MockUsers{}
		roles := &MockRoles{}
		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)
		repo.On("Roles").Return(roles)

		admin := &accounts.User{ID: uuid.New(), Email: "admin@example.com"}

		roles.On("GetByName", mock.Anything, accounts.RoleAdmin).Return(adminRole, nil).Once()
		users.On("GetByEmail", mock.Anything, "admin@example.com").Return(admin, nil).Once()
		roles.On("IsAssigned", mock.Anything, admin.ID, adminRole.ID).Return(true, nil).Once()

		seeder := accounts.NewSeeder(repo).WithLogger(testLogger{})
		require.NoError(t, seeder.SeedAdminUser(ctx, "admin@example.com", "adminPassword123!"))

		roles.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything, mock.Anything)
	})
}
