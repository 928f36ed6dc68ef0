package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type ResetPasswordMessage struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (e ResetPasswordMessage) Type() string { return "account.reset_password" }

type ResetPasswordHandler struct {
	repo   RepositoryManager
	codec  *TokenCodec
	logger Logger
}

// NewResetPasswordHandler creates a handler with sane defaults.
func NewResetPasswordHandler(repo RepositoryManager, codec *TokenCodec) *ResetPasswordHandler {
	return &ResetPasswordHandler{
		repo:   repo,
		codec:  codec,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ResetPasswordHandler) WithLogger(logger Logger) *ResetPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResetPasswordHandler) Execute(ctx context.Context, event ResetPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResetPasswordHandler) execute(ctx context.Context, event ResetPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	token, err := DecodeToken(event.Token)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve user for password reset")
	}

	if !h.codec.Verify(user, PurposeResetPassword, token) {
		return ErrInvalidToken
	}

	passwordHash, err := HashPassword(event.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	// UpdatePassword rotates the security stamp, so the token just used (and
	// every other outstanding token for the account) stops verifying.
	if err := h.repo.Users().UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
	}

	return nil
}
