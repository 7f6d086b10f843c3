package main

import (
	"fmt"
	"os"

	"github.com/emilmelnikov/netzip/internal/cmd"
	"github.com/jessevdk/go-flags"
)

type awsOptions struct {
	Profile string `short:"p" long:"profile" description:"override AWS_PROFILE if given" default-mask:"-"`
}

func main() {
	p, err := cmd.NewParser()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "create parser error: %v\n", err)
		os.Exit(1)
	}

	awsOpts := &awsOptions{}
	if _, err = p.AddGroup("AWS Options", "", awsOpts); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "create parser error: %v\n", err)
		os.Exit(1)
	}

	p.CommandHandler = func(command flags.Commander, args []string) error {
		if awsOpts.Profile != "" {
			if err := os.Setenv("AWS_PROFILE", awsOpts.Profile); err != nil {
				return fmt.Errorf("set AWS_PROFILE error: %w", err)
			}
		}

		return command.Execute(args)
	}

	_, err = p.Parse()
	exit(err)
}
