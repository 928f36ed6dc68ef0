package accounts

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const (
	tokenVersion    = "v1"
	tokenFieldCount = 5
	tokenNonceSize  = 16

	// DefaultTokenTTL bounds the validity window of purpose-scoped tokens.
	DefaultTokenTTL = 60 * time.Minute

	// tokenClockSkew tolerates minor clock drift between mint and verify.
	tokenClockSkew = time.Minute
)

// TokenCodec mints and verifies purpose-scoped tokens without persisting
// them. Validity derives from the account's security stamp: recompute the
// MAC over (user, purpose, stamp, issue time, nonce) and compare. Any action
// that rotates the stamp invalidates every outstanding token for the account.
type TokenCodec struct {
	key    []byte
	ttl    time.Duration
	logger Logger
	now    func() time.Time
}

// TokenCodecOption mutates codec construction.
type TokenCodecOption func(*TokenCodec)

// WithTokenTTL overrides the validity window.
func WithTokenTTL(ttl time.Duration) TokenCodecOption {
	return func(c *TokenCodec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithTokenClock overrides the time source, mainly for tests.
func WithTokenClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTokenLogger overrides the codec logger.
func WithTokenLogger(logger Logger) TokenCodecOption {
	return func(c *TokenCodec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTokenCodec creates a codec keyed with the given secret. An empty key is
// a configuration fault, fatal at startup rather than per request.
func NewTokenCodec(key []byte, opts ...TokenCodecOption) (*TokenCodec, error) {
	if len(key) == 0 {
		return nil, errors.New("token codec requires a signing key", errors.CategoryInternal)
	}

	c := &TokenCodec{
		key:    key,
		ttl:    DefaultTokenTTL,
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// TTL returns the configured validity window.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Mint derives a token bound to the user, the purpose and the user's current
// security stamp. The returned string is the raw token; wrap it with
// EncodeToken before putting it on the wire.
func (c *TokenCodec) Mint(user *User, purpose TokenPurpose) (string, error) {
	if user == nil {
		return "", errors.New("cannot mint token without a user", errors.CategoryBadInput)
	}

	if user.SecurityStamp == "" {
		return "", errors.New("user is missing a security stamp", errors.CategoryInternal)
	}

	nonce := make([]byte, tokenNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate token nonce")
	}

	issued := strconv.FormatInt(c.now().Unix(), 10)
	nonceHex := hex.EncodeToString(nonce)
	mac := c.computeMAC(user, purpose, issued, nonceHex)

	return strings.Join([]string{tokenVersion, purpose, issued, nonceHex, mac}, ":"), nil
}

// Verify recomputes the MAC for the raw token and reports whether it is
// valid for this user and purpose. It fails closed: malformed structure,
// wrong purpose, stale security stamp, expired window and MAC mismatch all
// return false, never an error.
func (c *TokenCodec) Verify(user *User, purpose TokenPurpose, token string) bool {
	if user == nil || user.SecurityStamp == "" || token == "" {
		return false
	}

	parts := strings.Split(token, ":")
	if len(parts) != tokenFieldCount {
		return false
	}

	version, tokenPurpose, issued, nonceHex, mac := parts[0], parts[1], parts[2], parts[3], parts[4]
	if version != tokenVersion {
		return false
	}

	if tokenPurpose != purpose {
		c.logger.Debug("token purpose mismatch", "want", purpose, "got", tokenPurpose)
		return false
	}

	issuedUnix, err := strconv.ParseInt(issued, 10, 64)
	if err != nil {
		return false
	}

	now := c.now()
	issuedAt := time.Unix(issuedUnix, 0)
	if issuedAt.After(now.Add(tokenClockSkew)) {
		return false
	}

	if now.Sub(issuedAt) > c.ttl {
		c.logger.Debug("token outside validity window", "issued_at", issuedAt)
		return false
	}

	expected := c.computeMAC(user, purpose, issued, nonceHex)
	return hmac.Equal([]byte(expected), []byte(mac))
}

func (c *TokenCodec) computeMAC(user *User, purpose TokenPurpose, issued, nonceHex string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(user.ID.String()))
	mac.Write([]byte{0})
	mac.Write([]byte(purpose))
	mac.Write([]byte{0})
	mac.Write([]byte(user.SecurityStamp))
	mac.Write([]byte{0})
	mac.Write([]byte(issued))
	mac.Write([]byte{0})
	mac.Write([]byte(nonceHex))
	return hex.EncodeToString(mac.Sum(nil))
}

// EncodeToken wraps a raw token in URL-safe base64 for transport. The
// encoding round-trips exactly for any byte sequence Mint can produce.
func EncodeToken(token string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(token))
}

// DecodeToken reverses EncodeToken. Malformed input is an invalid token,
// never a crash; it accepts both padded and unpadded forms since clients
// differ on this.
func DecodeToken(encoded string) (string, error) {
	if encoded == "" {
		return "", ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return "", ErrInvalidToken
	}

	return string(raw), nil
}
