package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type VerifyResetTokenMessage struct {
	Email      string `json:"email"`
	Token      string `json:"token"`
	OnResponse func(resp *VerifyResetTokenResponse)
}

func (e VerifyResetTokenMessage) Type() string { return "account.verify_reset_token" }

type VerifyResetTokenResponse struct {
	IsValid    bool       `json:"is_valid"`
	Email      string     `json:"email,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

type VerifyResetTokenHandler struct {
	repo   RepositoryManager
	codec  *TokenCodec
	logger Logger
}

func NewVerifyResetTokenHandler(repo RepositoryManager, codec *TokenCodec) *VerifyResetTokenHandler {
	return &VerifyResetTokenHandler{
		repo:   repo,
		codec:  codec,
		logger: defLogger{},
	}
}

func (h *VerifyResetTokenHandler) WithLogger(logger Logger) *VerifyResetTokenHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyResetTokenHandler) Execute(ctx context.Context, event VerifyResetTokenMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during token verification")
	default:
		return h.execute(ctx, event)
	}
}

// execute reports validity without distinguishing why verification failed;
// every failure path yields the same generic invalid response.
func (h *VerifyResetTokenHandler) execute(ctx context.Context, event VerifyResetTokenMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &VerifyResetTokenResponse{
		Email:   event.Email,
		Message: "Invalid token or user does not exist.",
	}
	defer func() {
		if event.OnResponse != nil {
			event.OnResponse(resp)
		}
	}()

	token, err := DecodeToken(event.Token)
	if err != nil {
		return nil
	}

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for token verification")
	}

	if !h.codec.Verify(user, PurposeResetPassword, token) {
		return nil
	}

	expiry := time.Now().Add(h.codec.TTL())
	resp.IsValid = true
	resp.Email = user.Email
	resp.ExpiryDate = &expiry
	resp.Message = "Token verified successfully"

	return nil
}
