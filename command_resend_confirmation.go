package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type ResendConfirmationMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *ResendConfirmationResponse)
}

func (e ResendConfirmationMessage) Type() string { return "account.resend_confirmation" }

// ResendConfirmationResponse keeps the internal distinction the API response
// deliberately flattens away.
type ResendConfirmationResponse struct {
	Dispatched       bool
	AlreadyConfirmed bool
	ConfirmationLink string
}

type ResendConfirmationHandler struct {
	repo     RepositoryManager
	codec    *TokenCodec
	notifier Notifier
	config   Config
	logger   Logger
}

func NewResendConfirmationHandler(repo RepositoryManager, codec *TokenCodec, notifier Notifier, config Config) *ResendConfirmationHandler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ResendConfirmationHandler{
		repo:     repo,
		codec:    codec,
		notifier: notifier,
		config:   config,
		logger:   defLogger{},
	}
}

func (h *ResendConfirmationHandler) WithLogger(logger Logger) *ResendConfirmationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResendConfirmationHandler) Execute(ctx context.Context, event ResendConfirmationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during confirmation resend")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendConfirmationHandler) execute(ctx context.Context, event ResendConfirmationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	resp := &ResendConfirmationResponse{}
	defer func() {
		if event.OnResponse != nil {
			event.OnResponse(resp)
		}
	}()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			h.logger.Debug("confirmation resend for unknown email", "email", NormalizeEmail(event.Email))
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for confirmation resend")
	}

	if user.EmailConfirmed {
		h.logger.Debug("confirmation resend for confirmed account", "user_id", user.ID)
		resp.AlreadyConfirmed = true
		return nil
	}

	token, err := h.codec.Mint(user, PurposeEmailConfirmation)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint confirmation token")
	}

	link := confirmationLink(h.config.GetClientBaseURL(), "confirm-email", user.Email, token)

	go func() {
		if err := h.notifier.Send(context.Background(), NotifierMessage{
			To:      user.Email,
			Subject: "Confirm Account",
			Body:    link,
		}); err != nil {
			h.logger.Error("confirmation email dispatch failed", "to", user.Email, "error", err)
		}
	}()

	resp.Dispatched = true
	resp.ConfirmationLink = link

	return nil
}
