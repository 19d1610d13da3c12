package main

import (
	"os"

	"github.com/crillab/ncsort/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
