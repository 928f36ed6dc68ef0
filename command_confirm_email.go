package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type ConfirmEmailMessage struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (e ConfirmEmailMessage) Type() string { return "account.confirm_email" }

type ConfirmEmailHandler struct {
	repo   RepositoryManager
	codec  *TokenCodec
	logger Logger
}

func NewConfirmEmailHandler(repo RepositoryManager, codec *TokenCodec) *ConfirmEmailHandler {
	return &ConfirmEmailHandler{
		repo:   repo,
		codec:  codec,
		logger: defLogger{},
	}
}

func (h *ConfirmEmailHandler) WithLogger(logger Logger) *ConfirmEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ConfirmEmailHandler) Execute(ctx context.Context, event ConfirmEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email confirmation")
	default:
		return h.execute(ctx, event)
	}
}

// execute never reveals whether the address exists: unknown account, bad
// decode and failed verification all collapse into the same invalid-token
// error.
func (h *ConfirmEmailHandler) execute(ctx context.Context, event ConfirmEmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	token, err := DecodeToken(event.Token)
	if err != nil {
		return ErrInvalidToken
	}

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			h.logger.Debug("confirm email for unknown account", "email", NormalizeEmail(event.Email))
			return ErrInvalidToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for confirmation")
	}

	if !h.codec.Verify(user, PurposeEmailConfirmation, token) {
		return ErrInvalidToken
	}

	// Re-confirming with a still valid token is a no-op, not an error.
	if user.EmailConfirmed {
		return nil
	}

	if err := h.repo.Users().ConfirmEmail(ctx, user.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email as confirmed")
	}

	return nil
}
