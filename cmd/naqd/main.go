package main

import (
	"os"

	"github.com/naqd/naqd/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
