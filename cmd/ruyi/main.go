package main

import (
	"os"

	"github.com/manglemix/ruyi-bot-3/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
