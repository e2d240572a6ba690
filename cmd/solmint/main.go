package main

import (
	"os"

	"github.com/lugondev/solmint/cmd/solmint/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
