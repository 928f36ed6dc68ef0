package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenPurpose scopes a derived token to a single one-time action.
type TokenPurpose = string

const (
	// PurposeEmailConfirmation is minted on registration and resend flows.
	PurposeEmailConfirmation TokenPurpose = "EmailConfirmation"
	// PurposeResetPassword is minted on forgot-password flows.
	PurposeResetPassword TokenPurpose = "ResetPassword"
)

// RoleAdmin gates the administrative endpoints.
const RoleAdmin = "Admin"

// User is the account model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Username       string     `bun:"username,notnull" json:"username,omitempty"`
	FirstName      string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName       string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	SecurityStamp  string     `bun:"security_stamp,notnull" json:"-"`
	EmailConfirmed bool       `bun:"email_confirmed" json:"email_confirmed"`
	IsActive       bool       `bun:"is_active" json:"is_active"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// FullName joins first and last name for display and token claims.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail lowercases the address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Role is a named grant users can be assigned to
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// UserRole is the membership join between users and roles
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:usrrol"`
	UserID        uuid.UUID  `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	RoleID        uuid.UUID  `bun:"role_id,pk,type:uuid" json:"role_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Sector is the reference entity managed by the sectors endpoints
type Sector struct {
	bun.BaseModel `bun:"table:sectors,alias:sec"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// NewSecurityStamp mints a fresh stamp. Rotating the stamp invalidates every
// purpose-scoped token already issued for the account.
func NewSecurityStamp() string {
	return uuid.NewString()
}
