//go:build windows

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"golang.org/x/term"
)

// exit maps a parse or command error to the process status; help output is
// not a failure. When run by double-click the console would vanish with the
// process, so hold it until a key is pressed.
func exit(err error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		_, _ = fmt.Fprintln(os.Stderr, "Press any key to close this window")
		_, _, _ = bufio.NewReader(os.Stdin).ReadRune()
	}

	if err != nil && !flags.WroteHelp(err) {
		os.Exit(1)
	}
}
