package main

import (
	"os"

	"github.com/dmitrijs2005/expensekeeper/internal/keytool"
)

func main() {
	os.Exit(keytool.Run(os.Args[1:], os.Stdout, os.Stderr))
}
