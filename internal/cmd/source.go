package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emilmelnikov/netzip"
	"github.com/emilmelnikov/netzip/httpsource"
	"github.com/emilmelnikov/netzip/s3source"
)

// openSource resolves name to a byte source. Supported schemes are s3://,
// http://, and https://; anything else names a local file.
func openSource(ctx context.Context, name string) (src netzip.Source, closeFn func() error, err error) {
	closeFn = func() error { return nil }

	switch {
	case strings.HasPrefix(name, "s3://"):
		u, err := url.Parse(name)
		if err != nil {
			return nil, nil, fmt.Errorf("parse S3 URI error: %w", err)
		}
		bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
		if bucket == "" || key == "" {
			return nil, nil, fmt.Errorf(`S3 URI "%s" must have form s3://bucket/key`, name)
		}

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load default config error: %w", err)
		}

		client := s3.NewFromConfig(cfg, func(options *s3.Options) {
			// without this, getting a bunch of WARN message below:
			// WARN Response has no supported checksum. Not validating response payload.
			options.DisableLogOutputChecksumValidationSkipped = true
		})

		src, err = s3source.New(ctx, client, bucket, key)
		return src, closeFn, err

	case strings.HasPrefix(name, "http://"), strings.HasPrefix(name, "https://"):
		src, err = httpsource.New(ctx, name)
		return src, closeFn, err

	default:
		f, err := os.Open(name)
		if err != nil {
			return nil, nil, err
		}

		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, nil, err
		}

		return netzip.NewReaderAtSource(f, fi.Size()), f.Close, nil
	}
}

// openArchive opens the byte source named by name and indexes it.
func openArchive(ctx context.Context, name string) (*netzip.Archive, func() error, error) {
	src, closeFn, err := openSource(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	a, err := netzip.From(ctx, src)
	if err != nil {
		_ = closeFn()
		return nil, nil, fmt.Errorf(`index "%s" error: %w`, name, err)
	}

	return a, closeFn, nil
}
