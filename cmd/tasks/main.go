package main

import (
	"os"

	"github.com/Gadeoli/todoapp-mobile/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
