package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/emilmelnikov/netzip"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type Unzip struct {
	Dir            string `short:"d" long:"dir" description:"extract into this directory instead of the current one" default:"."`
	MaxConcurrency int    `short:"P" long:"max-concurrency" description:"use up to max-concurrency number of goroutines to extract entries" default:"4"`
	Args           struct {
		Archive string   `positional-arg-name:"archive" description:"local path, s3:// URI, or http(s):// URL of the ZIP archive" required:"yes"`
		Entries []string `positional-arg-name:"entry" description:"extract only the named entries; all entries if none are given"`
	} `positional-args:"yes"`
}

func (c *Unzip) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max-concurrency must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	a, closeFn, err := openArchive(ctx, c.Args.Archive)
	if err != nil {
		return err
	}
	defer closeFn()

	names := c.Args.Entries
	if len(names) == 0 {
		names = slices.Sorted(a.Names())
	}

	var total int64
	entries := make([]netzip.Entry, 0, len(names))
	for _, name := range names {
		e, ok := a.Entry(name)
		if !ok {
			return fmt.Errorf(`no entry named "%s"`, name)
		}
		entries = append(entries, e)
		total += e.Size
	}

	bar := defaultBytes(total, fmt.Sprintf("extracting %d entries", len(entries)))
	defer bar.Close()

	n := len(entries)
	sometimes := rate.Sometimes{Interval: 5 * time.Second}
	var count atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.MaxConcurrency)
	for _, e := range entries {
		g.Go(func() error {
			if err := c.extract(ctx, a, e); err != nil {
				return fmt.Errorf(`extract "%s" error: %w`, e.Name, err)
			}

			_ = bar.Add64(e.Size)
			i := count.Add(1)
			sometimes.Do(func() {
				log.Printf(`[%d/%d] done extracting "%s"`, i, n, e.Name)
			})
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	log.Printf(`extracted %d entries to "%s"`, n, c.Dir)
	return nil
}

func (c *Unzip) extract(ctx context.Context, a *netzip.Archive, e netzip.Entry) error {
	rel := filepath.FromSlash(strings.TrimSuffix(e.Name, "/"))
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("entry name escapes the output directory")
	}
	path := filepath.Join(c.Dir, rel)

	// directory entries carry no payload.
	if strings.HasSuffix(e.Name, "/") && e.Size == 0 {
		return os.MkdirAll(path, 0755)
	}

	b, err := a.Get(ctx, e.Name)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, b, 0666)
}
