// Package main provides the nllgo CLI.
package main

import (
	"os"

	"github.com/volcanoseis/nllgo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
