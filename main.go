package main

import (
	"os"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/cli"
)

func main() {
	// The root command re-initializes the logger at the requested level.
	defer logger.Sync() // Make sure that the buffered is flushed.

	if err := cli.Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
