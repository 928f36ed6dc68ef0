package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles is the storage contract for role records and membership rows.
type Roles interface {
	GetByName(ctx context.Context, name string) (*Role, error)
	Create(ctx context.Context, role *Role) (*Role, error)
	Delete(ctx context.Context, name string) (bool, error)
	ListAll(ctx context.Context) ([]*Role, error)

	Assign(ctx context.Context, userID, roleID uuid.UUID) error
	AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error
	Remove(ctx context.Context, userID, roleID uuid.UUID) (bool, error)
	IsAssigned(ctx context.Context, userID, roleID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	CountMembers(ctx context.Context, roleID uuid.UUID) (int, error)
}

type roles struct {
	db *bun.DB
}

var _ Roles = (*roles)(nil)

func NewRolesRepository(db *bun.DB) Roles {
	return &roles{db: db}
}

func (r *roles) GetByName(ctx context.Context, name string) (*Role, error) {
	record := &Role{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"name": name,
				})
		}
		return nil, err
	}
	return record, nil
}

func (r *roles) Create(ctx context.Context, role *Role) (*Role, error) {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(role).Exec(ctx); err != nil {
		return nil, err
	}

	return role, nil
}

// Delete removes the role and its membership rows. Reports whether a role
// row was actually deleted.
func (r *roles) Delete(ctx context.Context, name string) (bool, error) {
	role, err := r.GetByName(ctx, name)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if _, err := r.db.NewDelete().
		Model((*UserRole)(nil)).
		Where("?TableAlias.role_id = ?", role.ID).
		Exec(ctx); err != nil {
		return false, err
	}

	res, err := r.db.NewDelete().
		Model((*Role)(nil)).
		Where("?TableAlias.id = ?", role.ID).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return rows > 0, nil
}

func (r *roles) ListAll(ctx context.Context) ([]*Role, error) {
	var records []*Role
	err := r.db.NewSelect().
		Model(&records).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*Role{}, nil
		}
		return nil, err
	}
	return records, nil
}

func (r *roles) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	return r.AssignTx(ctx, r.db, userID, roleID)
}

// AssignTx writes the membership row through the caller's transaction so a
// user insert and its role grants commit atomically.
func (r *roles) AssignTx(ctx context.Context, tx bun.IDB, userID, roleID uuid.UUID) error {
	membership := &UserRole{
		UserID: userID,
		RoleID: roleID,
	}
	_, err := tx.NewInsert().Model(membership).Exec(ctx)
	return err
}

func (r *roles) Remove(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*UserRole)(nil)).
		Where("?TableAlias.user_id = ? AND ?TableAlias.role_id = ?", userID, roleID).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return rows > 0, nil
}

func (r *roles) IsAssigned(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*UserRole)(nil)).
		Where("?TableAlias.user_id = ? AND ?TableAlias.role_id = ?", userID, roleID).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListForUser returns the role names held by the user, sorted.
func (r *roles) ListForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.NewSelect().
		Model((*UserRole)(nil)).
		Column("rol.name").
		Join(`JOIN "roles" AS "rol" ON "rol"."id" = ?TableAlias.role_id`).
		Where("?TableAlias.user_id = ?", userID).
		Order("rol.name ASC").
		Scan(ctx, &names)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []string{}, nil
		}
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (r *roles) CountMembers(ctx context.Context, roleID uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*UserRole)(nil)).
		Where("?TableAlias.role_id = ?", roleID).
		Count(ctx)
}
