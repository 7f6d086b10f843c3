package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

type Ls struct {
	Long bool `short:"l" long:"long" description:"also show the size and CRC-32 of every entry"`
	Args struct {
		Archive string `positional-arg-name:"archive" description:"local path, s3:// URI, or http(s):// URL of the ZIP archive" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Ls) Execute(args []string) error {
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

	var total uint64
	for _, name := range slices.Sorted(a.Names()) {
		e, _ := a.Entry(name)
		total += uint64(e.Size)

		if !c.Long {
			fmt.Println(name)
			continue
		}

		fmt.Printf("%10s  %08x  %s\n", humanize.Bytes(uint64(e.Size)), e.CRC32, name)
		if len(e.Comment) != 0 {
			fmt.Printf("%22s%s\n", "", e.Comment)
		}
	}

	if c.Long {
		fmt.Printf("%d entries, %s\n", a.Len(), humanize.Bytes(total))
		if comment := a.Comment(); len(comment) != 0 {
			fmt.Printf("archive comment: %s\n", comment)
		}
	}

	return nil
}
