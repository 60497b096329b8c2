package main

import (
	"os"

	"github.com/azure/brand-pulse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
