package cmd

import (
	"github.com/jessevdk/go-flags"
)

type Netzip struct {
	Ls    Ls    `command:"ls" alias:"list" description:"list the entries of a remote or local ZIP archive"`
	Cat   Cat   `command:"cat" description:"write the contents of one entry to stdout"`
	Unzip Unzip `command:"unzip" alias:"x" description:"extract entries to a local directory"`
}

func NewParser() (*flags.Parser, error) {
	opts := &Netzip{}

	p := flags.NewNamedParser("netzip", flags.Default)
	if _, err := p.AddGroup("Global Options", "", opts); err != nil {
		return nil, err
	}

	return p, nil
}
