package main

import (
	"os"

	"github.com/vexlang/vexc/cmd/vexc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
