package accounts

import (
	"context"
	"fmt"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "account.register" }

type RegisterUserResponse struct {
	User             *User
	ConfirmationLink string
}

type RegisterUserHandler struct {
	repo     RepositoryManager
	codec    *TokenCodec
	notifier Notifier
	config   Config
	logger   Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager, codec *TokenCodec, notifier Notifier, config Config) *RegisterUserHandler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &RegisterUserHandler{
		repo:     repo,
		codec:    codec,
		notifier: notifier,
		config:   config,
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.FirstName = event.FirstName
		user.LastName = event.LastName
		user.EmailConfirmed = false
		user.IsActive = true
		if event.UseHashid {
			if id, err := hashid.NewUUID(NormalizeEmail(event.Email)); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	token, err := h.codec.Mint(user, PurposeEmailConfirmation)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint confirmation token")
	}

	link := confirmationLink(h.config.GetClientBaseURL(), "confirm-email", user.Email, token)

	h.dispatch(user.Email, "Confirm Account", link)

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{
			User:             user,
			ConfirmationLink: link,
		})
	}

	return nil
}

// dispatch is fire-and-forget: delivery failure is logged and never alters
// the response already decided for the caller.
func (h *RegisterUserHandler) dispatch(to, subject, body string) {
	go func() {
		if err := h.notifier.Send(context.Background(), NotifierMessage{
			To:      to,
			Subject: subject,
			Body:    body,
		}); err != nil {
			h.logger.Error("confirmation email dispatch failed", "to", to, "error", err)
		}
	}()
}

func confirmationLink(baseURL, path, email, token string) string {
	return fmt.Sprintf(
		"%s/auth/%s?email=%s&token=%s",
		baseURL,
		path,
		url.QueryEscape(email),
		EncodeToken(token),
	)
}
