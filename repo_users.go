package accounts

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateUserPasswordSQL rotates the security stamp in the same statement that
// writes the new hash, so every outstanding purpose-scoped token dies with
// the old credential.
var UpdateUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"security_stamp" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	ConfirmEmail(ctx context.Context, id uuid.UUID) error
	ConfirmEmailTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error

	UpdateProfile(ctx context.Context, user *User) (*User, error)

	ListAll(ctx context.Context) ([]*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx looks up by address, case-insensitively.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("LOWER(?TableAlias.email) = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": NormalizeEmail(email)})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

// RegisterTx creates the account. A colliding address surfaces as a
// DuplicateEmail conflict; the unique index backstops the pre-check races.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	if _, err := a.GetByEmailTx(ctx, tx, user.Email); err == nil {
		return nil, errors.New("user with this email already exists", errors.CategoryConflict).
			WithTextCode(TextCodeDuplicateEmail)
	} else if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.New("user with this email already exists", errors.CategoryConflict).
				WithTextCode(TextCodeDuplicateEmail)
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ConfirmEmail(ctx context.Context, id uuid.UUID) error {
	return a.ConfirmEmailTx(ctx, a.db, id)
}

func (a *users) ConfirmEmailTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("email_confirmed = ?", true).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return a.SetActiveTx(ctx, a.db, id, active)
}

// SetActiveTx toggles the admin-managed active flag. Direct SQL because the
// ORM update path skips zero values and would never persist false.
func (a *users) SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) error {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.UpdatePasswordTx(ctx, a.db, id, passwordHash)
}

func (a *users) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, UpdateUserPasswordSQL, passwordHash, NewSecurityStamp(), id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

// UpdateProfile persists the admin-editable profile fields.
func (a *users) UpdateProfile(ctx context.Context, user *User) (*User, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, errors.New("cannot update user without an id", errors.CategoryBadInput)
	}

	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("first_name = ?", user.FirstName).
		Set("last_name = ?", user.LastName).
		Set("phone_number = ?", user.Phone).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("?TableAlias.id = ?", user.ID).
		Where("?TableAlias.deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return a.Repository.GetByID(ctx, user.ID.String())
}

// ListAll returns every account ordered by name, admin listing only.
func (a *users) ListAll(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Order("first_name ASC", "last_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.Username == "" {
		record.Username = usernameFromEmail(record.Email)
	}

	if record.SecurityStamp == "" {
		record.SecurityStamp = NewSecurityStamp()
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func usernameFromEmail(email string) string {
	if strings.Contains(email, "@") {
		return strings.Split(email, "@")[0]
	}
	return email
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
