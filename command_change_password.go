package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type ChangePasswordMessage struct {
	UserID      uuid.UUID `json:"user_id"`
	OldPassword string    `json:"old_password"`
	NewPassword string    `json:"new_password"`
}

func (e ChangePasswordMessage) Type() string { return "account.change_password" }

type ChangePasswordHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewChangePasswordHandler(repo RepositoryManager) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password change")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByID(ctx, event.UserID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUnauthorized
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password change")
	}

	if err := ComparePasswordAndHash(event.OldPassword, user.PasswordHash); err != nil {
		h.logger.Warn("password change with wrong current password", "user_id", user.ID)
		return goerrors.New("current password is incorrect", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}

	hash, err := HashPassword(event.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}

	// UpdatePassword rotates the security stamp, so outstanding purpose
	// tokens stop verifying once the password changes.
	if err := h.repo.Users().UpdatePassword(ctx, user.ID, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist new password")
	}

	return nil
}
