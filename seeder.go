package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Seeder makes sure baseline roles and the bootstrap admin account exist.
// Every operation is idempotent, run it on each startup.
type Seeder struct {
	repo   RepositoryManager
	logger Logger
}

func NewSeeder(repo RepositoryManager) *Seeder {
	return &Seeder{
		repo:   repo,
		logger: defLogger{},
	}
}

func (s *Seeder) WithLogger(logger Logger) *Seeder {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Seeder) SeedRoles(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = []string{RoleAdmin}
	}

	for _, name := range names {
		_, err := s.repo.Roles().GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check role existence")
		}

		if _, err := s.repo.Roles().Create(ctx, &Role{Name: name}); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to seed role")
		}

		s.logger.Info("seeded role", "role", name)
	}

	return nil
}

// SeedAdminUser provisions the bootstrap admin, or repairs its role
// membership when the account already exists.
func (s *Seeder) SeedAdminUser(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return goerrors.New("admin email and password are required", goerrors.CategoryBadInput)
	}

	role, err := s.repo.Roles().GetByName(ctx, RoleAdmin)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "admin role missing, seed roles first")
	}

	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up admin user")
		}

		hash, err := HashPassword(password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash admin password")
		}

		user, err = s.repo.Users().Register(ctx, &User{
			Email:          email,
			FirstName:      "admin",
			LastName:       "admin",
			PasswordHash:   hash,
			EmailConfirmed: true,
			IsActive:       true,
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create admin user")
		}

		s.logger.Info("admin user created", "email", user.Email)
	}

	assigned, err := s.repo.Roles().IsAssigned(ctx, user.ID, role.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check admin role membership")
	}

	if !assigned {
		if err := s.repo.Roles().Assign(ctx, user.ID, role.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to assign admin role")
		}
		s.logger.Info("admin role assigned", "email", user.Email)
	}

	return nil
}
