// Package secrets resolves the two secrets the server needs before it can
// serve anything: the email encryption key and the session signing key.
//
// Load is called once at startup. The returned Material is never mutated
// and may be shared by any number of goroutines.
package secrets

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/cryptox"
	"github.com/dmitrijs2005/expensekeeper/internal/server/config"
)

// Material holds decoded secret keys.
type Material struct {
	emailKey   []byte
	signingKey []byte
}

// Load decodes secret material from cfg. Any problem is a
// common.ErrConfiguration and the process must not continue.
func Load(cfg *config.Config) (*Material, error) {
	encoded := strings.TrimSpace(cfg.EmailEncryptionKey)
	if encoded == "" {
		return nil, fmt.Errorf("%w: missing %s", common.ErrConfiguration, config.EnvEmailEncryptionKey)
	}

	emailKey, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64", common.ErrConfiguration, config.EnvEmailEncryptionKey)
	}
	if len(emailKey) != cryptox.KeySize {
		return nil, fmt.Errorf("%w: %s must decode to %d bytes, got %d",
			common.ErrConfiguration, config.EnvEmailEncryptionKey, cryptox.KeySize, len(emailKey))
	}

	if cfg.SessionSigningKey == "" {
		return nil, fmt.Errorf("%w: missing %s", common.ErrConfiguration, config.EnvSessionSigningKey)
	}

	return &Material{
		emailKey:   emailKey,
		signingKey: []byte(cfg.SessionSigningKey),
	}, nil
}

// EmailKey returns a copy of the 32-byte email encryption key.
func (m *Material) EmailKey() []byte {
	return append([]byte(nil), m.emailKey...)
}

// SigningKey returns a copy of the session signing key.
func (m *Material) SigningKey() []byte {
	return append([]byte(nil), m.signingKey...)
}
