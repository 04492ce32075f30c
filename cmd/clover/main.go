// Clover finds existing organizations and people that match a new or
// existing entity.
package main

import (
	"os"

	"github.com/Ramsey-B/clover/cmd/clover/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
