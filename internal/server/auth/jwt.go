// Package auth issues and verifies session tokens, hashes passwords, and
// turns "is there a valid token" into an allow/redirect decision.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// SessionLifetime is how long an issued token stays valid.
const SessionLifetime = 7 * 24 * time.Hour

// Role is the closed set of roles a session can carry.
type Role string

const RoleUser Role = "user"

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser:
		return true
	}
	return false
}

// Claims is the session claim set: sub, email_hash, role, iat, exp.
type Claims struct {
	EmailHash string `json:"email_hash"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens. It keeps no state
// between calls beyond the signing key.
type TokenService struct {
	key []byte
	now func() time.Time
}

type TokenServiceOption func(*TokenService)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(signingKey []byte, opts ...TokenServiceOption) *TokenService {
	s := &TokenService{
		key: append([]byte(nil), signingKey...),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue returns a signed token for subject that expires SessionLifetime
// after issuance.
func (s *TokenService) Issue(subject, emailHash string, role Role) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", common.ErrUnknownRole, role)
	}
	if subject == "" || emailHash == "" {
		return "", fmt.Errorf("%w: subject and email hash are required", common.ErrValidation)
	}

	iat := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		EmailHash: emailHash,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(SessionLifetime)),
		},
	})

	return token.SignedString(s.key)
}

// Verify checks the signature first and only then the claims. Signature,
// encoding and claim-shape problems return common.ErrInvalidSignature;
// a token at or past exp returns common.ErrTokenExpired.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidSignature
	}

	if claims.Subject == "" || claims.EmailHash == "" || !claims.Role.Valid() {
		return nil, common.ErrInvalidSignature
	}

	return claims, nil
}
