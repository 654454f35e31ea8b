// Command googlewrapper builds authenticated Google API clients from the
// command line.
package main

import (
	"os"

	"github.com/custodia-labs/googlewrapper/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
