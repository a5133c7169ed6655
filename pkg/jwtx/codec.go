package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
)

// Default TTLs per token kind. Overridable via Config.
const (
	// DefaultAccessTokenTTL is short-lived for security.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is longer-lived for user convenience.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultEmailVerifyTTL bounds how long a verification link stays valid.
	DefaultEmailVerifyTTL = 24 * time.Hour

	// DefaultPasswordResetTTL bounds the reset-link window.
	DefaultPasswordResetTTL = 1 * time.Hour
)

var (
	// ErrExpired reports a structurally valid token past its expiry.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrMalformed reports a token with a bad structure, signature, or kind.
	ErrMalformed = errors.New("jwtx: token malformed")
)

// Config carries the four signing secrets and TTLs. It is constructed once
// at startup and injected into the Codec; nothing in this package reads the
// environment.
type Config struct {
	Issuer string

	AccessSecret        string
	RefreshSecret       string
	EmailVerifySecret   string
	PasswordResetSecret string

	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	EmailVerifyTTL   time.Duration
	PasswordResetTTL time.Duration
}

type kindKey struct {
	secret []byte
	ttl    time.Duration
}

// Codec signs and verifies all four token kinds. One generic code path,
// parameterized by kind; the kind maps to a distinct secret and TTL.
type Codec struct {
	issuer string
	kinds  map[Kind]kindKey
}

// NewCodec validates the configuration and builds a Codec. All four secrets
// must be set and pairwise distinct.
func NewCodec(cfg Config) (*Codec, error) {
	secrets := map[Kind]string{
		KindAccess:        cfg.AccessSecret,
		KindRefresh:       cfg.RefreshSecret,
		KindEmailVerify:   cfg.EmailVerifySecret,
		KindPasswordReset: cfg.PasswordResetSecret,
	}

	seen := make(map[string]Kind, len(secrets))
	for kind, secret := range secrets {
		if secret == "" {
			return nil, fmt.Errorf("jwtx: missing secret for %s tokens", kind)
		}
		if other, dup := seen[secret]; dup {
			return nil, fmt.Errorf("jwtx: %s and %s tokens share a secret", other, kind)
		}
		seen[secret] = kind
	}

	ttls := map[Kind]time.Duration{
		KindAccess:        cfg.AccessTTL,
		KindRefresh:       cfg.RefreshTTL,
		KindEmailVerify:   cfg.EmailVerifyTTL,
		KindPasswordReset: cfg.PasswordResetTTL,
	}
	defaults := map[Kind]time.Duration{
		KindAccess:        DefaultAccessTokenTTL,
		KindRefresh:       DefaultRefreshTokenTTL,
		KindEmailVerify:   DefaultEmailVerifyTTL,
		KindPasswordReset: DefaultPasswordResetTTL,
	}

	kinds := make(map[Kind]kindKey, len(secrets))
	for kind, secret := range secrets {
		ttl := ttls[kind]
		if ttl <= 0 {
			ttl = defaults[kind]
		}
		kinds[kind] = kindKey{secret: []byte(secret), ttl: ttl}
	}

	return &Codec{issuer: cfg.Issuer, kinds: kinds}, nil
}

// TTL reports the configured lifetime for a token kind.
func (c *Codec) TTL(kind Kind) time.Duration {
	return c.kinds[kind].ttl
}

// Issue signs a token of the given kind carrying the payload.
func (c *Codec) Issue(p Payload, kind Kind) (string, error) {
	return c.issueAt(p, kind, time.Now().UTC())
}

func (c *Codec) issueAt(p Payload, kind Kind, now time.Time) (string, error) {
	key, ok := c.kinds[kind]
	if !ok {
		return "", fmt.Errorf("jwtx: unknown token kind %q", kind)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.ttl)),
			ID:        newJTI(),
		},
		Kind:   kind,
		Verify: p.Verify,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify validates a token of the expected kind and returns its claims.
// Failures are ErrExpired or ErrMalformed; Reason extracts the user-facing
// message.
func (c *Codec) Verify(tokenStr string, kind Kind) (Claims, error) {
	key, ok := c.kinds[kind]
	if !ok {
		return Claims{}, fmt.Errorf("jwtx: unknown token kind %q", kind)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return key.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("%w: invalid claims", ErrMalformed)
	}

	// The kind claim must agree with what the caller expects even though the
	// per-kind secret already separates the families.
	if claims.Kind != kind {
		return Claims{}, fmt.Errorf("%w: unexpected token kind", ErrMalformed)
	}

	return *claims, nil
}

// Reason converts a Verify error into a capitalized message suitable for
// user-facing display, e.g. "Token is expired" or "Signature is invalid".
func Reason(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}

	r := []rune(msg)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}
