package accounts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// UsersController serves the admin user management endpoints.
type UsersController struct {
	Logger Logger
	Users  *UserManager
	Roles  *RoleManager
}

func NewUsersController(repo RepositoryManager, opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	c.Users = NewUserManager(repo).WithLogger(c.Logger)
	c.Roles = NewRoleManager(repo).WithLogger(c.Logger)

	return c
}

type UsersControllerOption func(*UsersController) *UsersController

func WithUsersLogger(logger Logger) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// RegisterRoutes mounts the endpoints on the given group, expected to be
// rooted at /users. The middleware chain, usually ProtectedRoute plus
// RequireRole, applies to every route.
func (c *UsersController) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Get("/", c.ListUsers, mw...)
	group.Post("/create", c.CreateUser, mw...)
	group.Post("/reset-password", c.ResetPassword, mw...)
	group.Get("/:id", c.GetUser, mw...)
	group.Put("/:id", c.UpdateUser, mw...)
	group.Patch("/:id/status", c.ToggleStatus, mw...)
	group.Get("/:id/roles", c.UserRoles, mw...)
}

func (c *UsersController) ListUsers(ctx router.Context) error {
	users, err := c.Users.ListUsers(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Users retrieved successfully", users)
}

func (c *UsersController) GetUser(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Invalid user id")
	}

	user, err := c.Users.GetUser(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "User retrieved successfully", user)
}

func (c *UsersController) CreateUser(ctx router.Context) error {
	payload := new(CreateUserInput)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	user, err := c.Users.CreateUser(ctx.Context(), *payload)
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "User created successfully", user)
}

func (c *UsersController) UpdateUser(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Invalid user id")
	}

	payload := new(UpdateUserInput)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	user, err := c.Users.UpdateUser(ctx.Context(), id, *payload)
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "User updated successfully", user)
}

type ToggleUserStatusPayload struct {
	UserID   string `json:"user_id"`
	IsActive bool   `json:"is_active"`
}

func (c *UsersController) ToggleStatus(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Invalid user id")
	}

	payload := new(ToggleUserStatusPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	// Path id and body id must agree.
	if payload.UserID != "" && payload.UserID != id.String() {
		return respondFail(ctx, router.StatusBadRequest, "User ID mismatch")
	}

	user, err := c.Users.SetUserStatus(ctx.Context(), id, payload.IsActive)
	if err != nil {
		return respondError(ctx, err)
	}

	message := "User disabled successfully"
	if payload.IsActive {
		message = "User enabled successfully"
	}

	return respondOK(ctx, message, user)
}

type ResetUserPasswordPayload struct {
	UserID      string `json:"user_id"`
	NewPassword string `json:"new_password"`
}

func (r ResetUserPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, is.UUID),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

func (c *UsersController) ResetPassword(ctx router.Context) error {
	payload := new(ResetUserPasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	id, err := uuid.Parse(payload.UserID)
	if err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Invalid user id")
	}

	if err := c.Users.ResetPassword(ctx.Context(), id, payload.NewPassword); err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Password reset successfully", nil)
}

func (c *UsersController) UserRoles(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Invalid user id")
	}

	roles, err := c.Roles.ListRolesForUser(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "User roles retrieved successfully", roles)
}
