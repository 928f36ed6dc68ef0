package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type ForgotPasswordMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *ForgotPasswordResponse)
}

func (e ForgotPasswordMessage) Type() string { return "account.forgot_password" }

// ForgotPasswordResponse records what actually happened. The HTTP layer never
// exposes any of it beyond the generic message; it exists for debug exposure
// and for the notifier-side observability the anti-enumeration policy allows.
type ForgotPasswordResponse struct {
	Dispatched bool
	ResetLink  string
}

type ForgotPasswordHandler struct {
	repo     RepositoryManager
	codec    *TokenCodec
	notifier Notifier
	config   Config
	logger   Logger
}

func NewForgotPasswordHandler(repo RepositoryManager, codec *TokenCodec, notifier Notifier, config Config) *ForgotPasswordHandler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ForgotPasswordHandler{
		repo:     repo,
		codec:    codec,
		notifier: notifier,
		config:   config,
		logger:   defLogger{},
	}
}

func (h *ForgotPasswordHandler) WithLogger(logger Logger) *ForgotPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ForgotPasswordHandler) Execute(ctx context.Context, event ForgotPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

// execute succeeds for unknown and unconfirmed accounts alike; the caller
// gets the same outcome either way and only the logs keep the distinction.
func (h *ForgotPasswordHandler) execute(ctx context.Context, event ForgotPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &ForgotPasswordResponse{}
	defer func() {
		if event.OnResponse != nil {
			event.OnResponse(resp)
		}
	}()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			h.logger.Debug("password reset for unknown email", "email", NormalizeEmail(event.Email))
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	if !user.EmailConfirmed {
		h.logger.Debug("password reset before email confirmation", "user_id", user.ID)
		return nil
	}

	token, err := h.codec.Mint(user, PurposeResetPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint reset token")
	}

	link := confirmationLink(h.config.GetClientBaseURL(), "password-change", user.Email, token)

	go func() {
		if err := h.notifier.Send(context.Background(), NotifierMessage{
			To:      user.Email,
			Subject: "Reset Password",
			Body:    link,
		}); err != nil {
			h.logger.Error("reset email dispatch failed", "to", user.Email, "error", err)
		}
	}()

	resp.Dispatched = true
	resp.ResetLink = link

	return nil
}
