// Package cryptox implements the email identity codec: normalisation, a
// deterministic lookup hash, and reversible AES-256-GCM encryption of the
// normalised address.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
)

const (
	// KeySize is the required email encryption key length (AES-256).
	KeySize = 32
	// NonceSize is the GCM nonce length drawn fresh for every encryption.
	NonceSize = 12
	// TagSize is the GCM authentication tag length.
	TagSize = 16
)

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashEmail returns the lowercase hex SHA-256 of the UTF-8 bytes of a
// normalised email. It is the only value used to look identities up.
func HashEmail(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// EncryptedEmail is the storage form of an encrypted address. All three parts
// are base64 (standard encoding) and all three are needed to decrypt.
type EncryptedEmail struct {
	Ciphertext string
	Nonce      string
	Tag        string
}

// EmailCodec encrypts and decrypts normalised emails. It is safe for
// concurrent use.
type EmailCodec struct {
	aead cipher.AEAD
}

// NewEmailCodec builds a codec for a 32-byte key.
func NewEmailCodec(key []byte) (*EmailCodec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: email encryption key must be %d bytes, got %d", common.ErrConfiguration, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}

	aead, err := cipher.NewGCMWithTagSize(block, TagSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}

	return &EmailCodec{aead: aead}, nil
}

// Encrypt seals a normalised email under a fresh random nonce.
func (c *EmailCodec) Encrypt(normalized string) (EncryptedEmail, error) {
	nonce, err := common.RandomBytes(NonceSize)
	if err != nil {
		return EncryptedEmail{}, fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends the tag to the ciphertext.
	sealed := c.aead.Seal(nil, nonce, []byte(normalized), nil)
	split := len(sealed) - TagSize

	return EncryptedEmail{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:split]),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Tag:        base64.StdEncoding.EncodeToString(sealed[split:]),
	}, nil
}

// Decrypt opens an EncryptedEmail. Any decoding problem or tag mismatch
// yields common.ErrIntegrity and no plaintext.
func (c *EmailCodec) Decrypt(e EncryptedEmail) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(e.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext encoding", common.ErrIntegrity)
	}
	nonce, err := base64.StdEncoding.DecodeString(e.Nonce)
	if err != nil || len(nonce) != NonceSize {
		return "", fmt.Errorf("%w: nonce", common.ErrIntegrity)
	}
	tag, err := base64.StdEncoding.DecodeString(e.Tag)
	if err != nil || len(tag) != TagSize {
		return "", fmt.Errorf("%w: tag", common.ErrIntegrity)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", common.ErrIntegrity
	}
	return string(plaintext), nil
}
