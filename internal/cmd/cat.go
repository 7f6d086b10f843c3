package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
)

type Cat struct {
	Args struct {
		Archive string `positional-arg-name:"archive" description:"local path, s3:// URI, or http(s):// URL of the ZIP archive" required:"yes"`
		Entry   string `positional-arg-name:"entry" description:"name of the entry to print" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Cat) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	a, closeFn, err := openArchive(ctx, c.Args.Archive)
	if err != nil {
		return err
	}
	defer closeFn()

	b, err := a.Get(ctx, c.Args.Entry)
	if err != nil {
		return fmt.Errorf(`get "%s" error: %w`, c.Args.Entry, err)
	}

	_, err = os.Stdout.Write(b)
	return err
}
