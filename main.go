package main

import (
	"os"

	"github.com/recruiteros/recruiteros/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
