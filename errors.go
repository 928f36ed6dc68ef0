package accounts

import (
	"github.com/goliatone/go-errors"
)

// Text codes surfaced on rich errors so HTTP and log layers can branch
// without string matching.
const (
	TextCodeDuplicateEmail  = "DUPLICATE_EMAIL"
	TextCodeInvalidToken    = "INVALID_TOKEN"
	TextCodeTokenExpired    = "TOKEN_EXPIRED"
	TextCodeAlreadyExists   = "ALREADY_EXISTS"
	TextCodeAlreadyAssigned = "ALREADY_ASSIGNED"
	TextCodeNotAssigned     = "NOT_ASSIGNED"
)

// ErrInvalidCredentials is returned for unknown email, inactive account and
// bad password alike so callers cannot probe which one failed.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrEmailNotConfirmed is the one login failure that stays distinct from
// ErrInvalidCredentials. This mirrors the upstream contract; note it confirms
// the address is registered.
var ErrEmailNotConfirmed = errors.New("email not confirmed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("EMAIL_NOT_CONFIRMED")

// ErrInvalidToken covers every confirmation or reset token failure: malformed
// encoding, wrong purpose, wrong account, stale stamp, expired window.
var ErrInvalidToken = errors.New("invalid token or user does not exist", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidToken)

// ErrTokenExpired is returned for session tokens past their expiry.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for session tokens that fail to parse or verify.
var ErrTokenMalformed = errors.New("authentication token malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrUnauthorized is returned when no session identity can be resolved.
var ErrUnauthorized = errors.New("authentication required", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// GenericMessageForgotPassword is returned for every forgot-password request,
// whether or not the address is registered.
const GenericMessageForgotPassword = "If the email is registered, a password reset email will be sent."

// GenericMessageResendConfirmation is returned for every resend request,
// whether or not the address is registered.
const GenericMessageResendConfirmation = "If your email is registered, you will receive a confirmation email"
