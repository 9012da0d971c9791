package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/flagx"
	"github.com/dmitrijs2005/expensekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the optional configuration file. Only
// fields present in the file override the current Config.
type JsonConfig struct {
	EndpointAddrHTTP    *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC    *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN         *string         `json:"database_dsn"`
	EmailEncryptionKey  *string         `json:"email_encryption_key"`
	SessionSigningKey   *string         `json:"session_signing_key"`
	Environment         *string         `json:"environment"`
	AllowedEmailDomains []string        `json:"allowed_email_domains"`
	LoginPath           *string         `json:"login_path"`
	AppPath             *string         `json:"app_path"`
	WebRoot             *string         `json:"web_root"`
	ShutdownTimeout     *timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// A missing or invalid file panics: it is a startup-time error.
func parseJson(config *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.EmailEncryptionKey, c.EmailEncryptionKey)
	setString(&config.SessionSigningKey, c.SessionSigningKey)
	setString(&config.Environment, c.Environment)
	setString(&config.LoginPath, c.LoginPath)
	setString(&config.AppPath, c.AppPath)
	setString(&config.WebRoot, c.WebRoot)

	if c.AllowedEmailDomains != nil {
		config.AllowedEmailDomains = splitDomains(strings.Join(c.AllowedEmailDomains, ","))
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
