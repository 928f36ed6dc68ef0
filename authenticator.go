package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
)

// LoginResult is the successful login payload.
type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

// Auther authenticates credentials and issues session tokens.
type Auther struct {
	repo         RepositoryManager
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, tokenService TokenService) *Auther {
	return &Auther{
		repo:         repo,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies credentials and mints a session token. Unknown email, an
// inactive account and a wrong password all fail with the same invalid
// credentials error; only the unconfirmed-email outcome stays distinct,
// matching the upstream contract. Logs keep the real cause.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Debug("login for unknown email", "email", NormalizeEmail(email))
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("login user lookup failed", "error", err)
		return nil, err
	}

	if !user.IsActive {
		s.logger.Warn("login blocked for inactive account", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if !user.EmailConfirmed {
		s.logger.Debug("login before email confirmation", "user_id", user.ID)
		return nil, ErrEmailNotConfirmed
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Debug("login password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	roles, err := s.repo.Roles().ListForUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("login failed to fetch roles", "error", err)
		return nil, err
	}

	token, err := s.tokenService.Issue(user, roles)
	if err != nil {
		s.logger.Error("login failed to issue session token", "error", err)
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.tokenService.Expiration().Seconds()),
		UserID:    user.ID.String(),
		Email:     user.Email,
		Name:      user.FullName(),
	}, nil
}

// SessionFromToken validates a bearer token and decodes its session.
func (s *Auther) SessionFromToken(raw string) (*SessionObject, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Debug("session token validation failed", "error", err)
		return nil, err
	}

	return sessionFromClaims(claims)
}

// IdentityFromSession resolves the account behind a session.
func (s *Auther) IdentityFromSession(ctx context.Context, session *SessionObject) (*User, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}

	id, err := session.GetUserUUID()
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.repo.Users().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	return user, nil
}
