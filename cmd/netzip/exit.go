//go:build !windows

package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

// exit maps a parse or command error to the process status; help output is
// not a failure.
func exit(err error) {
	if err != nil && !flags.WroteHelp(err) {
		os.Exit(1)
	}
}
