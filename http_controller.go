package accounts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods the controllers use.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AuthController serves the account lifecycle endpoints: registration,
// confirmation, login, password recovery, and the role admin surface.
type AuthController struct {
	Logger   Logger
	Repo     RepositoryManager
	Auther   Authenticator
	Codec    *TokenCodec
	Notifier Notifier
	Config   Config
	Roles    *RoleManager

	register   *RegisterUserHandler
	confirm    *ConfirmEmailHandler
	forgot     *ForgotPasswordHandler
	resend     *ResendConfirmationHandler
	reset      *ResetPasswordHandler
	verify     *VerifyResetTokenHandler
	changePass *ChangePasswordHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerNotifier(notifier Notifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if notifier != nil {
			c.Notifier = notifier
		}
		return c
	}
}

func NewAuthController(repo RepositoryManager, auther Authenticator, codec *TokenCodec, cfg Config, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:   defLogger{},
		Repo:     repo,
		Auther:   auther,
		Codec:    codec,
		Notifier: LogNotifier{},
		Config:   cfg,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	c.Roles = NewRoleManager(repo).WithLogger(c.Logger)

	c.register = NewRegisterUserHandler(repo, codec, c.Notifier, cfg).WithLogger(c.Logger)
	c.confirm = NewConfirmEmailHandler(repo, codec).WithLogger(c.Logger)
	c.forgot = NewForgotPasswordHandler(repo, codec, c.Notifier, cfg).WithLogger(c.Logger)
	c.resend = NewResendConfirmationHandler(repo, codec, c.Notifier, cfg).WithLogger(c.Logger)
	c.reset = NewResetPasswordHandler(repo, codec).WithLogger(c.Logger)
	c.verify = NewVerifyResetTokenHandler(repo, codec).WithLogger(c.Logger)
	c.changePass = NewChangePasswordHandler(repo).WithLogger(c.Logger)

	return c
}

// RegisterRoutes mounts the auth endpoints on the given group. The group is
// expected to be rooted at /auth.
func (c *AuthController) RegisterRoutes(group RouteRegistrar) {
	protected := ProtectedRoute(c.Auther)
	adminOnly := RequireRole(RoleAdmin)

	group.Post("/register", c.Register)
	group.Post("/confirm-email", c.ConfirmEmail)
	group.Post("/login", c.Login)
	group.Post("/forgot-password", c.ForgotPassword)
	group.Get("/verify-reset-token", c.VerifyResetToken)
	group.Post("/resend-confirmation-email", c.ResendConfirmation)
	group.Post("/reset-password", c.ResetPassword)

	group.Post("/change-password", c.ChangePassword, protected)
	group.Get("/profile", c.Profile, protected)

	group.Get("/roles", c.AllRoles, protected, adminOnly)
	group.Post("/roles", c.CreateRole, protected, adminOnly)
	group.Delete("/roles/:name", c.DeleteRole, protected, adminOnly)
	group.Post("/roles/assign", c.AssignRole, protected, adminOnly)
	group.Post("/roles/remove", c.RemoveRole, protected, adminOnly)
	group.Get("/users/:email/roles", c.UserRoles, protected, adminOnly)
}

type RegisterPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

func (c *AuthController) Register(ctx router.Context) error {
	payload := new(RegisterPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	var out *RegisterUserResponse
	msg := RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
		OnResponse: func(resp *RegisterUserResponse) {
			out = resp
		},
	}

	if err := c.register.Execute(ctx.Context(), msg); err != nil {
		return respondError(ctx, err)
	}

	var result any
	if c.Config.GetExposeDebugLinks() && out != nil {
		result = map[string]string{"confirmation_link": out.ConfirmationLink}
	}

	return respondOK(ctx, "Account was created successfully. A confirmation email has been sent to your email address", result)
}

type ConfirmEmailPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (r ConfirmEmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Token, validation.Required),
	)
}

func (c *AuthController) ConfirmEmail(ctx router.Context) error {
	payload := new(ConfirmEmailPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	msg := ConfirmEmailMessage{Email: payload.Email, Token: payload.Token}
	if err := c.confirm.Execute(ctx.Context(), msg); err != nil {
		if goerrors.Is(err, ErrInvalidToken) {
			return respondFail(ctx, router.StatusBadRequest, "Invalid token or user does not exist.")
		}
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Email confirmed successfully", nil)
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (c *AuthController) Login(ctx router.Context) error {
	payload := new(LoginPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	result, err := c.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		if goerrors.Is(err, ErrEmailNotConfirmed) {
			return respondFail(ctx, router.StatusUnauthorized, "Email not confirmed")
		}
		if goerrors.Is(err, ErrInvalidCredentials) {
			return respondFail(ctx, router.StatusUnauthorized, "Invalid credentials")
		}
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Login successful", result)
}

type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (c *AuthController) ForgotPassword(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	var out *ForgotPasswordResponse
	msg := ForgotPasswordMessage{
		Email: payload.Email,
		OnResponse: func(resp *ForgotPasswordResponse) {
			out = resp
		},
	}

	if err := c.forgot.Execute(ctx.Context(), msg); err != nil {
		return respondError(ctx, err)
	}

	// Response never reveals whether the address exists.
	var result any
	if c.Config.GetExposeDebugLinks() && out != nil && out.Dispatched {
		result = map[string]string{"reset_link": out.ResetLink}
	}

	return respondOK(ctx, GenericMessageForgotPassword, result)
}

func (c *AuthController) VerifyResetToken(ctx router.Context) error {
	email := ctx.Query("email", "")
	token := ctx.Query("token", "")

	if email == "" || token == "" {
		return respondFail(ctx, router.StatusBadRequest, "Invalid token or user does not exist.")
	}

	var out *VerifyResetTokenResponse
	msg := VerifyResetTokenMessage{
		Email: email,
		Token: token,
		OnResponse: func(resp *VerifyResetTokenResponse) {
			out = resp
		},
	}

	if err := c.verify.Execute(ctx.Context(), msg); err != nil {
		return respondError(ctx, err)
	}

	if out == nil || !out.IsValid {
		return ctx.JSON(router.StatusBadRequest, Response{
			StatusCode: router.StatusBadRequest,
			Result:     out,
			IsSuccess:  false,
			Message:    "Invalid token or user does not exist.",
		})
	}

	return respondOK(ctx, "Token verified successfully", out)
}

type ResendConfirmationPayload struct {
	Email string `json:"email"`
}

func (r ResendConfirmationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (c *AuthController) ResendConfirmation(ctx router.Context) error {
	payload := new(ResendConfirmationPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	msg := ResendConfirmationMessage{Email: payload.Email}
	if err := c.resend.Execute(ctx.Context(), msg); err != nil {
		return respondError(ctx, err)
	}

	// Same reply whether the address exists, is pending, or is confirmed.
	return respondOK(ctx, GenericMessageResendConfirmation, nil)
}

type ResetPasswordPayload struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

func (c *AuthController) ResetPassword(ctx router.Context) error {
	payload := new(ResetPasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	msg := ResetPasswordMessage{
		Email:       payload.Email,
		Token:       payload.Token,
		NewPassword: payload.NewPassword,
	}

	if err := c.reset.Execute(ctx.Context(), msg); err != nil {
		if goerrors.Is(err, ErrInvalidToken) {
			return respondFail(ctx, router.StatusBadRequest, "Invalid token or user does not exist.")
		}
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Password reset successful", nil)
}

type ChangePasswordPayload struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 128)),
	)
}

func (c *AuthController) ChangePassword(ctx router.Context) error {
	session := SessionFromContext(ctx)
	if session == nil {
		return respondError(ctx, ErrUnauthorized)
	}

	payload := new(ChangePasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return respondError(ctx, ErrUnauthorized)
	}

	msg := ChangePasswordMessage{
		UserID:      userID,
		OldPassword: payload.OldPassword,
		NewPassword: payload.NewPassword,
	}

	if err := c.changePass.Execute(ctx.Context(), msg); err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Password changed successfully", nil)
}

func (c *AuthController) Profile(ctx router.Context) error {
	session := SessionFromContext(ctx)
	if session == nil {
		return respondError(ctx, ErrUnauthorized)
	}

	user, err := c.Auther.IdentityFromSession(ctx.Context(), session)
	if err != nil {
		return respondError(ctx, err)
	}

	roles, err := c.Repo.Roles().ListForUser(ctx.Context(), user.ID)
	if err != nil {
		return respondError(ctx, err)
	}

	profile := map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"roles":    roles,
	}

	return respondOK(ctx, "Profile retrieved successfully", profile)
}

type CreateRolePayload struct {
	RoleName string `json:"role_name"`
}

func (r CreateRolePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RoleName, validation.Required, validation.Length(2, 50)),
	)
}

func (c *AuthController) CreateRole(ctx router.Context) error {
	payload := new(CreateRolePayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	role, err := c.Roles.CreateRole(ctx.Context(), payload.RoleName)
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Role '"+role.Name+"' created successfully", role)
}

func (c *AuthController) DeleteRole(ctx router.Context) error {
	name := ctx.Param("name")
	if name == "" {
		return respondFail(ctx, router.StatusBadRequest, "Role name cannot be empty")
	}

	if err := c.Roles.DeleteRole(ctx.Context(), name); err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Role '"+name+"' deleted successfully", nil)
}

func (c *AuthController) AllRoles(ctx router.Context) error {
	roles, err := c.Roles.ListRoles(ctx.Context())
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Roles retrieved successfully", roles)
}

type AssignRolePayload struct {
	Email    string `json:"email"`
	RoleName string `json:"role_name"`
}

func (r AssignRolePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.RoleName, validation.Required),
	)
}

func (c *AuthController) AssignRole(ctx router.Context) error {
	payload := new(AssignRolePayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	if err := c.Roles.AssignRoleByEmail(ctx.Context(), payload.Email, payload.RoleName); err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Role '"+payload.RoleName+"' assigned to user successfully", nil)
}

func (c *AuthController) RemoveRole(ctx router.Context) error {
	payload := new(AssignRolePayload)
	if err := ctx.Bind(payload); err != nil {
		return respondFail(ctx, router.StatusBadRequest, "Failed to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return respondFail(ctx, router.StatusBadRequest, err.Error())
	}

	if err := c.Roles.RemoveRoleByEmail(ctx.Context(), payload.Email, payload.RoleName); err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "Role '"+payload.RoleName+"' removed from user successfully", nil)
}

func (c *AuthController) UserRoles(ctx router.Context) error {
	email := ctx.Param("email")
	if email == "" {
		return respondFail(ctx, router.StatusBadRequest, "Email cannot be empty")
	}

	roles, err := c.Roles.ListRolesForEmail(ctx.Context(), email)
	if err != nil {
		return respondError(ctx, err)
	}

	return respondOK(ctx, "User roles retrieved successfully", roles)
}
