// Package main is the ingrid-dsc command.
package main

import (
	"os"

	"github.com/fp-wemove/ingrid-iplug-dsc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
