package main

import (
	"os"

	"github.com/zaigie/record2screenshot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
