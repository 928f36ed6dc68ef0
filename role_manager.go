package accounts

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// RoleSummary is a role plus its membership count, for admin listings.
type RoleSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
}

// RoleManager groups the role administration operations. Lookups that miss
// return NotFound errors, duplicate creations and assignments return
// Conflict errors, so the HTTP layer can map them without string matching.
type RoleManager struct {
	repo   RepositoryManager
	logger Logger
}

func NewRoleManager(repo RepositoryManager) *RoleManager {
	return &RoleManager{
		repo:   repo,
		logger: defLogger{},
	}
}

func (m *RoleManager) WithLogger(logger Logger) *RoleManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

func validateRoleName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(2, 50),
	)
}

func (m *RoleManager) CreateRole(ctx context.Context, name string) (*Role, error) {
	if err := validateRoleName(name); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid role name")
	}

	if _, err := m.repo.Roles().GetByName(ctx, name); err == nil {
		return nil, goerrors.New(
			fmt.Sprintf("Role '%s' already exists", name),
			goerrors.CategoryConflict,
		).WithTextCode(TextCodeAlreadyExists)
	} else if !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check role existence")
	}

	role, err := m.repo.Roles().Create(ctx, &Role{Name: name})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create role")
	}

	m.logger.Info("role created", "role", role.Name, "role_id", role.ID)

	return role, nil
}

func (m *RoleManager) DeleteRole(ctx context.Context, name string) error {
	deleted, err := m.repo.Roles().Delete(ctx, name)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete role")
	}

	if !deleted {
		return goerrors.New(
			fmt.Sprintf("Role '%s' not found", name),
			goerrors.CategoryNotFound,
		).WithCode(goerrors.CodeNotFound)
	}

	m.logger.Info("role deleted", "role", name)

	return nil
}

func (m *RoleManager) ListRoles(ctx context.Context) ([]*RoleSummary, error) {
	roles, err := m.repo.Roles().ListAll(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list roles")
	}

	out := make([]*RoleSummary, 0, len(roles))
	for _, role := range roles {
		count, err := m.repo.Roles().CountMembers(ctx, role.ID)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count role members")
		}
		out = append(out, &RoleSummary{
			ID:          role.ID,
			Name:        role.Name,
			MemberCount: count,
		})
	}

	return out, nil
}

func (m *RoleManager) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	user, role, err := m.resolvePair(ctx, userID, roleName)
	if err != nil {
		return err
	}

	assigned, err := m.repo.Roles().IsAssigned(ctx, user.ID, role.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check role membership")
	}

	if assigned {
		return goerrors.New(
			fmt.Sprintf("User is already in role '%s'", role.Name),
			goerrors.CategoryConflict,
		).WithTextCode(TextCodeAlreadyAssigned)
	}

	if err := m.repo.Roles().Assign(ctx, user.ID, role.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to assign role")
	}

	m.logger.Info("role assigned", "user_id", user.ID, "role", role.Name)

	return nil
}

func (m *RoleManager) RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	user, role, err := m.resolvePair(ctx, userID, roleName)
	if err != nil {
		return err
	}

	removed, err := m.repo.Roles().Remove(ctx, user.ID, role.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove role")
	}

	if !removed {
		return goerrors.New(
			fmt.Sprintf("User is not in role '%s'", role.Name),
			goerrors.CategoryConflict,
		).WithTextCode(TextCodeNotAssigned)
	}

	m.logger.Info("role removed", "user_id", user.ID, "role", role.Name)

	return nil
}

func (m *RoleManager) ListRolesForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if _, err := m.repo.Users().GetByID(ctx, userID.String()); err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, goerrors.New("User not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	names, err := m.repo.Roles().ListForUser(ctx, userID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list roles for user")
	}

	return names, nil
}

// AssignRoleByEmail resolves the address first, the auth endpoints identify
// accounts by email rather than id.
func (m *RoleManager) AssignRoleByEmail(ctx context.Context, email, roleName string) error {
	user, err := m.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	return m.AssignRole(ctx, user.ID, roleName)
}

func (m *RoleManager) RemoveRoleByEmail(ctx context.Context, email, roleName string) error {
	user, err := m.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	return m.RemoveRole(ctx, user.ID, roleName)
}

func (m *RoleManager) ListRolesForEmail(ctx context.Context, email string) ([]string, error) {
	user, err := m.userByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	names, err := m.repo.Roles().ListForUser(ctx, user.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list roles for user")
	}

	return names, nil
}

func (m *RoleManager) userByEmail(ctx context.Context, email string) (*User, error) {
	user, err := m.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, goerrors.New("User not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}
	return user, nil
}

func (m *RoleManager) resolvePair(ctx context.Context, userID uuid.UUID, roleName string) (*User, *Role, error) {
	user, err := m.repo.Users().GetByID(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil, goerrors.New("User not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	role, err := m.repo.Roles().GetByName(ctx, roleName)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil, goerrors.New(
				fmt.Sprintf("Role '%s' not found", roleName),
				goerrors.CategoryNotFound,
			).WithCode(goerrors.CodeNotFound)
		}
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve role")
	}

	return user, role, nil
}
