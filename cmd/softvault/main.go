// Package main starts the softvault catalog service.
package main

import (
	"os"

	"github.com/dkozyrev/softvault/pkg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
