package accounts

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserView is the admin-facing projection of an account, roles included.
type UserView struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Phone          string     `json:"phone_number,omitempty"`
	IsActive       bool       `json:"is_active"`
	EmailConfirmed bool       `json:"email_confirmed"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	Roles          []string   `json:"roles"`
}

type CreateUserInput struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone_number"`
	Roles     []string `json:"roles"`
}

func (p CreateUserInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&p.FirstName, validation.Required),
		validation.Field(&p.LastName, validation.Required),
	)
}

// UpdateUserInput carries partial updates: nil means leave as is.
type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone_number"`
	IsActive  *bool   `json:"is_active"`
}

// UserManager is the admin service over accounts: listing, provisioning,
// profile edits, activation toggles, and direct password resets.
type UserManager struct {
	repo   RepositoryManager
	logger Logger
}

func NewUserManager(repo RepositoryManager) *UserManager {
	return &UserManager{
		repo:   repo,
		logger: defLogger{},
	}
}

func (m *UserManager) WithLogger(logger Logger) *UserManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

func (m *UserManager) ListUsers(ctx context.Context) ([]*UserView, error) {
	users, err := m.repo.Users().ListAll(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}

	out := make([]*UserView, 0, len(users))
	for _, user := range users {
		view, err := m.toView(ctx, user)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}

	return out, nil
}

func (m *UserManager) GetUser(ctx context.Context, userID uuid.UUID) (*UserView, error) {
	user, err := m.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.toView(ctx, user)
}

func (m *UserManager) CreateUser(ctx context.Context, input CreateUserInput) (*UserView, error) {
	if err := input.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload")
	}

	roleIDs := make([]uuid.UUID, 0, len(input.Roles))
	for _, name := range input.Roles {
		role, err := m.repo.Roles().GetByName(ctx, name)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil, goerrors.New(
					fmt.Sprintf("Role '%s' does not exist", name),
					goerrors.CategoryValidation,
				)
			}
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve role")
		}
		roleIDs = append(roleIDs, role.ID)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:          input.Email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Phone:          input.Phone,
		PasswordHash:   hash,
		EmailConfirmed: false,
		IsActive:       true,
	}

	err = m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := m.repo.Users().RegisterTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user = created

		for _, roleID := range roleIDs {
			if err := m.repo.Roles().AssignTx(ctx, tx, user.ID, roleID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("user created", "user_id", user.ID, "email", user.Email)

	return m.toView(ctx, user)
}

func (m *UserManager) UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*UserView, error) {
	user, err := m.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil && *input.FirstName != "" {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil && *input.LastName != "" {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	updated, err := m.repo.Users().UpdateProfile(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user")
	}

	if input.IsActive != nil && *input.IsActive != updated.IsActive {
		if err := m.repo.Users().SetActive(ctx, updated.ID, *input.IsActive); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user status")
		}
		updated.IsActive = *input.IsActive
	}

	m.logger.Info("user updated", "user_id", updated.ID)

	return m.toView(ctx, updated)
}

func (m *UserManager) SetUserStatus(ctx context.Context, userID uuid.UUID, active bool) (*UserView, error) {
	user, err := m.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := m.repo.Users().SetActive(ctx, user.ID, active); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user status")
	}
	user.IsActive = active

	m.logger.Info("user status changed", "user_id", user.ID, "active", active)

	return m.toView(ctx, user)
}

// ResetPassword sets a new password directly, no token round trip. The
// security stamp rotates with it, so outstanding purpose tokens die too.
func (m *UserManager) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	user, err := m.getUser(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := m.repo.Users().UpdatePassword(ctx, user.ID, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset password")
	}

	m.logger.Info("password reset by admin", "user_id", user.ID)

	return nil
}

func (m *UserManager) getUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := m.repo.Users().GetByID(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, goerrors.New("User not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}
	return user, nil
}

func (m *UserManager) toView(ctx context.Context, user *User) (*UserView, error) {
	roles, err := m.repo.Roles().ListForUser(ctx, user.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list roles for user")
	}

	return &UserView{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Phone:          user.Phone,
		IsActive:       user.IsActive,
		EmailConfirmed: user.EmailConfirmed,
		CreatedAt:      user.CreatedAt,
		Roles:          roles,
	}, nil
}
