package models

import (
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/cryptox"
)

// User is the stored identity record. The plaintext email is never kept:
// EmailHash is the lookup key and the three Email* fields together recover
// the normalised address.
type User struct {
	ID              string
	EmailHash       string
	EmailCiphertext string
	EmailNonce      string
	EmailAuthTag    string
	PasswordDigest  string
	FirstName       string
	LastName        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EncryptedEmail groups the encrypted email components.
func (u *User) EncryptedEmail() cryptox.EncryptedEmail {
	return cryptox.EncryptedEmail{
		Ciphertext: u.EmailCiphertext,
		Nonce:      u.EmailNonce,
		Tag:        u.EmailAuthTag,
	}
}

// SetEncryptedEmail stores the components of e on u.
func (u *User) SetEncryptedEmail(e cryptox.EncryptedEmail) {
	u.EmailCiphertext = e.Ciphertext
	u.EmailNonce = e.Nonce
	u.EmailAuthTag = e.Tag
}
