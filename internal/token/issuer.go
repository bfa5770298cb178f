// Package token mints the short-lived platform credential attached to
// every message-history fetch.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the platform-mandated validity window. The expiry claim
// is always issued-at plus exactly this duration.
const TokenTTL = time.Hour

// Subject is the fixed subject claim the platform expects.
const Subject = "bot-auth"

// Claims is the claim set of a platform token.
type Claims struct {
	jwt.RegisteredClaims
	AppID string `json:"appId"`
}

// Issuer mints signed platform tokens. The zero value is usable; now is
// overridable for tests.
type Issuer struct {
	now func() time.Time
}

// NewIssuer creates a token issuer using the wall clock.
func NewIssuer() *Issuer {
	return &Issuer{now: time.Now}
}

// Issue mints a fresh HS256-signed token for the given application id,
// using the shared secret as the signing key. Tokens are never cached
// or reused; every fetch operation calls Issue once.
func (i *Issuer) Issue(appID, secret string) (string, error) {
	if appID == "" {
		return "", errors.New("app id is required")
	}
	if secret == "" {
		return "", errors.New("secret is required")
	}

	now := i.clock()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		AppID: appID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) clock() time.Time {
	if i.now != nil {
		return i.now()
	}
	return time.Now()
}
