package jwtx

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates the four token families. Each kind is signed with its
// own secret so a leaked verify-token secret cannot forge access tokens.
type Kind string

const (
	KindAccess        Kind = "access"
	KindRefresh       Kind = "refresh"
	KindEmailVerify   Kind = "email_verify"
	KindPasswordReset Kind = "password_reset"
)

// Payload is the identity a token carries: the subject user and their
// verification status at issuance time.
type Payload struct {
	UserID string
	Verify string
}

// Claims are the claims embedded in every issued token and reproduced on
// decode. Kind is checked on verify in addition to the per-kind secret.
type Claims struct {
	jwt.RegisteredClaims

	Kind   Kind   `json:"tkn"`
	Verify string `json:"verify,omitempty"`
}

// Payload reconstructs the payload carried by decoded claims.
func (c Claims) Payload() Payload {
	return Payload{UserID: c.Subject, Verify: c.Verify}
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
