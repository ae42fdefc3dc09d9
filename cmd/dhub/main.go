// Package main provides the dhub command-line tool.
package main

import (
	"os"

	"github.com/digitalhub-labs/digitalhub/internal/cli"

	// Register runtimes via init()
	_ "github.com/digitalhub-labs/digitalhub/pkg/runtimes/dbt"
	_ "github.com/digitalhub-labs/digitalhub/pkg/runtimes/nefertem"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
