package accounts_test

import (
	"context"
	"database/sql"

	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockRepositoryManager implements accounts.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Users() accounts.Users {
	args := m.Called()
	return args.Get(0).(accounts.Users)
}

func (m *MockRepositoryManager) Roles() accounts.Roles {
	args := m.Called()
	return args.Get(0).(accounts.Roles)
}

func (m *MockRepositoryManager) Sectors() accounts.Sectors {
	args := m.Called()
	return args.Get(0).(accounts.Sectors)
}

// MockUsers implements accounts.Users. The embedded repository interface
// covers the generic surface the tests never touch.
type MockUsers struct {
	mock.Mock
	repository.Repository[*accounts.User]
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	args := m.Called(ctx, id, criteria)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*accounts.User, error) {
	args := m.Called(ctx, tx, email)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Register(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, tx, user)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) ConfirmEmail(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) ConfirmEmailTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUsers) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockUsers) SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) error {
	args := m.Called(ctx, tx, id, active)
	return args.Error(0)
}

func (m *MockUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) UpdateProfile(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) ListAll(ctx context.Context) ([]*accounts.User, error) {
	args := m.Called(ctx)
	if u, ok := args.Get(0).([]*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRoles implements accounts.Roles
type MockRoles struct {
	mock.Mock
}

func (m *MockRoles) GetByName(ctx context.Context, name string) (*accounts.Role, error) {
	args := m.Called(ctx, name)
	if r, ok := args.Get(0).(*accounts.Role); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoles) Create(ctx context.Context, role *accounts.Role) (*accounts.Role, error) {
	args := m.Called(ctx, role)
	if r, ok := args.Get(0).(*accounts.Role); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoles) Delete(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoles) ListAll(ctx context.Context) ([]*accounts.Role, error) {
	args := m.Called(ctx)
	if r, ok := args.Get(0).([]*accounts.Role); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoles) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *MockRoles) AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, tx, userID, roleID)
	return args.Error(0)
}

func (m *MockRoles) Remove(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoles) IsAssigned(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoles) ListForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if r, ok := args.Get(0).([]string); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoles) CountMembers(ctx context.Context, roleID uuid.UUID) (int, error) {
	args := m.Called(ctx, roleID)
	return args.Int(0), args.Error(1)
}

// MockSectors implements accounts.Sectors
type MockSectors struct {
	mock.Mock
}

func (m *MockSectors) GetByID(ctx context.Context, id uuid.UUID) (*accounts.Sector, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*accounts.Sector); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSectors) GetByName(ctx context.Context, name string) (*accounts.Sector, error) {
	args := m.Called(ctx, name)
	if s, ok := args.Get(0).(*accounts.Sector); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSectors) ListAll(ctx context.Context) ([]*accounts.Sector, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).([]*accounts.Sector); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSectors) Create(ctx context.Context, sector *accounts.Sector) (*accounts.Sector, error) {
	args := m.Called(ctx, sector)
	if s, ok := args.Get(0).(*accounts.Sector); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSectors) Update(ctx context.Context, sector *accounts.Sector) (*accounts.Sector, error) {
	args := m.Called(ctx, sector)
	if s, ok := args.Get(0).(*accounts.Sector); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSectors) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockAuthenticator implements accounts.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*accounts.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if r, ok := args.Get(0).(*accounts.LoginResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (*accounts.SessionObject, error) {
	args := m.Called(token)
	if s, ok := args.Get(0).(*accounts.SessionObject); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) IdentityFromSession(ctx context.Context, session *accounts.SessionObject) (*accounts.User, error) {
	args := m.Called(ctx, session)
	if u, ok := args.Get(0).(*accounts.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier captures outbound messages.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, msg accounts.NotifierMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// testConfig implements accounts.Config with static values.
type testConfig struct {
	exposeDebugLinks bool
}

func (c testConfig) GetSigningKey() string     { return "test-signing-key" }
func (c testConfig) GetTokenExpiration() int   { return 60 }
func (c testConfig) GetPurposeTokenTTL() int   { return 60 }
func (c testConfig) GetIssuer() string         { return "accounts-test" }
func (c testConfig) GetAudience() []string     { return []string{"accounts-test"} }
func (c testConfig) GetClientBaseURL() string  { return "http://localhost:3000" }
func (c testConfig) GetExposeDebugLinks() bool { return c.exposeDebugLinks }
