package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator decides whether a session token is still usable. Opaque
// tokens are accepted as-is. JWTs are rejected once their exp has passed and,
// when a secret is configured, when their HS256 signature does not verify.
type TokenValidator struct {
	secret []byte
	now    func() time.Time
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret), now: time.Now}
}

// WithClock overrides the time source, for tests.
func (v *TokenValidator) WithClock(now func() time.Time) *TokenValidator {
	v.now = now
	return v
}

func (v *TokenValidator) Valid(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if strings.Count(token, ".") != 2 {
		return true
	}

	if len(v.secret) > 0 {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(v.now),
		)
		_, err := parser.Parse(token, func(*jwt.Token) (interface{}, error) {
			return v.secret, nil
		})
		return err == nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	return exp == nil || v.now().Before(exp.Time)
}
