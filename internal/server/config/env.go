package config

import "github.com/dmitrijs2005/expensekeeper/internal/flagx"

// Environment variables understood by parseEnv.
const (
	EnvEmailEncryptionKey = "EMAIL_ENCRYPTION_KEY"
	EnvSessionSigningKey  = "AUTH_JWT_SECRET"
	EnvDatabaseURL        = "DATABASE_URL"
	EnvAppEnvironment     = "APP_ENV"
)

// parseEnv overrides secrets, the DSN and the environment name from process
// variables. Unset or empty variables leave the current value alone.
func parseEnv(config *Config) {
	config.EmailEncryptionKey = flagx.EnvString(EnvEmailEncryptionKey, config.EmailEncryptionKey)
	config.SessionSigningKey = flagx.EnvString(EnvSessionSigningKey, config.SessionSigningKey)
	config.DatabaseDSN = flagx.EnvString(EnvDatabaseURL, config.DatabaseDSN)
	config.Environment = flagx.EnvString(EnvAppEnvironment, config.Environment)
}
