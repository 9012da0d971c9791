// Package keytool implements the operator commands for preparing secret
// material: generating an email encryption key and hashing a password.
package keytool

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/expensekeeper/internal/common"
	"github.com/dmitrijs2005/expensekeeper/internal/cryptox"
	"github.com/dmitrijs2005/expensekeeper/internal/server/auth"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

const usage = `usage: keytool <command>

commands:
  genkey          print a new base64 key for EMAIL_ENCRYPTION_KEY
  hash-password   read a password without echo and print its bcrypt digest
`

// Run executes one command and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "genkey":
		err = genKey(stdout)
	case "hash-password":
		err = hashPassword(stdout, stderr)
	default:
		fmt.Fprint(stderr, usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func genKey(w io.Writer) error {
	key, err := common.RandomBytes(cryptox.KeySize)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	_, err = fmt.Fprintln(w, base64.StdEncoding.EncodeToString(key))
	return err
}

func hashPassword(stdout, stderr io.Writer) error {
	fmt.Fprint(stderr, "Enter password: ")
	pw, err := readPassword()
	fmt.Fprintln(stderr)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := auth.ValidatePassword(string(pw)); err != nil {
		return err
	}

	digest, err := auth.HashPassword(string(pw))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, digest)
	return err
}
