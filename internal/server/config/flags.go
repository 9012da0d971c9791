package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-g string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN, or "memory"
//	-k string   email encryption key, base64 of 32 bytes
//	-s string   session signing key
//	-e string   environment ("development" or "production")
//	-m string   comma-separated approved email domains ("" allows any)
//	-w string   static pages directory
//
// os.Args is first filtered with flagx.FilterArgs so that -c/-config and
// flags of other components do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-k", "-s", "-e", "-m", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.EmailEncryptionKey, "k", config.EmailEncryptionKey, "email encryption key (base64)")
	fs.StringVar(&config.SessionSigningKey, "s", config.SessionSigningKey, "session signing key")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")
	domains := fs.String("m", strings.Join(config.AllowedEmailDomains, ","), "approved email domains")
	fs.StringVar(&config.WebRoot, "w", config.WebRoot, "static pages directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AllowedEmailDomains = splitDomains(*domains)
}
