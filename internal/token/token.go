package token

import (
	"errors"
	"fmt"
	"time"

	"billboardwatch/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

// Claims is the identity a verified bearer token resolves to.
type Claims struct {
	UserID string
	Role   types.UserRole
	Email  string
}

// Issuer signs and verifies bearer tokens with a server-held HMAC secret.
// There is no revocation list; expiry is the only invalidation mechanism.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token carrying the user's identity and role,
// expiring ttl from now.
func (i *Issuer) Issue(user *types.User) (string, error) {
	now := time.Now()

	tok, err := jwt.NewBuilder().
		Subject(user.ID).
		IssuedAt(now).
		Expiration(now.Add(i.ttl)).
		Claim("role", string(user.Role)).
		Claim("email", user.Email).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), i.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// Verify checks the signature and validity window and returns the embedded
// claims. Expired tokens fail with ErrExpired; anything else wrong with the
// token fails with ErrInvalid, so callers can tell "log in again" apart from
// a malformed request.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	// Signature check first, validation separately, so an expired token with
	// a good signature is distinguishable from garbage.
	tok, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), i.secret),
		jwt.WithValidate(false),
	)
	if err != nil {
		return nil, ErrInvalid
	}

	if exp, ok := tok.Expiration(); ok && !time.Now().Before(exp) {
		return nil, ErrExpired
	}

	if err := jwt.Validate(tok); err != nil {
		return nil, ErrInvalid
	}

	userID, ok := tok.Subject()
	if !ok || userID == "" {
		return nil, ErrInvalid
	}

	var role string
	if err := tok.Get("role", &role); err != nil {
		return nil, ErrInvalid
	}

	var email string
	if err := tok.Get("email", &email); err != nil {
		return nil, ErrInvalid
	}

	return &Claims{
		UserID: userID,
		Role:   types.UserRole(role),
		Email:  email,
	}, nil
}
