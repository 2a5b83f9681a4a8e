// Command researchbot is the document ingestion and question answering CLI.
package main

import (
	"fmt"
	"os"

	"github.com/researchbot/researchbot/internal/adapters/driving/cli"
)

// version is overridden at build time via
// -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)

	services, cleanup, err := buildServices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "researchbot: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cli.SetServices(services)

	if err := cli.Execute(); err != nil {
		cleanup()
		os.Exit(1)
	}
}
