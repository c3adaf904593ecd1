package main

import (
	"os"

	"github.com/couchcryptid/flood-status-service/internal/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
