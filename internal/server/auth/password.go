package auth

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const (
	// PasswordCost is the bcrypt work factor.
	PasswordCost = 12
	// MinPasswordLength is counted in characters.
	MinPasswordLength = 8
	// MaxPasswordBytes is where bcrypt stops reading input.
	MaxPasswordBytes = 72
)

var (
	dummyOnce   sync.Once
	dummyDigest []byte
	dummyErr    error
)

// ValidatePassword enforces the caller-side policy before hashing.
func ValidatePassword(plain string) error {
	if utf8.RuneCountInString(plain) < MinPasswordLength {
		return common.ErrPasswordTooShort
	}
	if len(plain) > MaxPasswordBytes {
		return common.ErrPasswordTooLong
	}
	return nil
}

// HashPassword returns a self-contained bcrypt digest with an embedded
// random salt. Two calls with the same input never return the same digest.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether plain matches digest. A malformed digest
// or an input longer than MaxPasswordBytes is a mismatch and still pays the
// full bcrypt cost; bcrypt would otherwise ignore everything past 72 bytes.
func VerifyPassword(plain, digest string) bool {
	if len(plain) > MaxPasswordBytes {
		DummyVerify(plain)
		return false
	}
	if _, err := bcrypt.Cost([]byte(digest)); err != nil {
		DummyVerify(plain)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// PrepareDummyDigest builds the digest DummyVerify compares against. The
// server calls it at startup so no login pays for it.
func PrepareDummyDigest() error {
	dummyOnce.Do(func() {
		secret, err := common.MakeRandHexString(16)
		if err != nil {
			dummyErr = fmt.Errorf("dummy digest: %w", err)
			return
		}
		dummyDigest, dummyErr = bcrypt.GenerateFromPassword([]byte(secret), PasswordCost)
		if dummyErr != nil {
			dummyErr = fmt.Errorf("dummy digest: %w", dummyErr)
		}
	})
	return dummyErr
}

// DummyVerify spends the same time as a real verification against a digest
// nobody knows the password for. Login calls it for unknown emails.
func DummyVerify(plain string) {
	if err := PrepareDummyDigest(); err != nil {
		// no digest to compare against, spend the cost anyway
		_, _ = bcrypt.GenerateFromPassword([]byte("expensekeeper-dummy"), PasswordCost)
		return
	}
	_ = bcrypt.CompareHashAndPassword(dummyDigest, []byte(plain))
}
