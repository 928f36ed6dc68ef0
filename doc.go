// Package accounts provides a user management and authentication backend:
// credential storage over Bun repositories, purpose-scoped tokens for email
// confirmation and password reset, JWT session issuance, and the HTTP
// controllers that expose the account lifecycle.
//
// Purpose tokens:
//   - TokenCodec derives tokens from the account's security stamp with an
//     HMAC, so nothing is persisted per token. Rotating the stamp, which
//     every password write does, invalidates all outstanding tokens at once.
//   - Tokens are scoped to a purpose (EmailConfirmation, ResetPassword) and
//     expire after a configurable window. Verification fails closed.
//
// Workflows:
//   - Command handlers (RegisterUserHandler, ConfirmEmailHandler,
//     ForgotPasswordHandler, ...) carry one operation each. They take a
//     typed message, run inside a bounded context, and report side results
//     through an optional OnResponse callback.
//   - Account enumeration is not possible through the recovery endpoints:
//     forgot-password and resend-confirmation answer identically whether or
//     not the address exists.
//
// Sessions:
//   - TokenService signs HS256 JWTs with subject, unique_name, email, and
//     role claims. Auther.Login flattens unknown accounts, wrong passwords,
//     and deactivated accounts into a single invalid credentials error;
//     unconfirmed email stays distinct so clients can prompt a resend.
package accounts
