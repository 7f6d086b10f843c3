// Package httpsource provides a netzip.Source over an HTTP URL using Range
// requests. The server must honor Range; a 200 response to a ranged GET is
// rejected rather than silently downloading the whole object.
package httpsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/emilmelnikov/netzip"
)

// Options customises New.
type Options struct {
	// Client is the HTTP client to use. Defaults to http.DefaultClient.
	Client *http.Client

	// ModifyRequest can be used to modify every outgoing request, such as
	// adding an Authorization header.
	ModifyRequest func(*http.Request)
}

// Source is a netzip.Source backed by HTTP Range requests. It is safe for
// concurrent reads; every ReadAt issues an independent request.
type Source struct {
	client *http.Client
	url    string
	size   int64
	reqFn  func(*http.Request)
}

var _ netzip.Source = (*Source)(nil)

// New returns a Source reading from the given URL.
//
// The client is used right away for a HEAD request to determine a valid size
// for the resource.
func New(ctx context.Context, url string, optFns ...func(*Options)) (*Source, error) {
	opts := &Options{
		Client:        http.DefaultClient,
		ModifyRequest: func(*http.Request) {},
	}
	for _, fn := range optFns {
		fn(opts)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create HEAD request error: %w", err)
	}
	opts.ModifyRequest(req)

	res, err := opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("determine resource size error: %w", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("determine resource size error: status %s", res.Status)
	}
	if res.ContentLength < 0 {
		return nil, fmt.Errorf("determine resource size error: no Content-Length")
	}

	return &Source{
		client: opts.Client,
		url:    url,
		size:   res.ContentLength,
		reqFn:  opts.ModifyRequest,
	}, nil
}

func (s *Source) Size(context.Context) (int64, error) {
	return s.size, nil
}

func (s *Source) ReadAt(ctx context.Context, offset, size int64) ([]byte, error) {
	start, n, err := netzip.Window(offset, size, s.size)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create GET request error: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, start+n-1))
	s.reqFn(req)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get range error: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("get range error: status %s", res.Status)
	}

	b := make([]byte, n)
	readN, err := io.ReadFull(res.Body, b)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: read %d bytes at offset %d, got %d", netzip.ErrOutOfBounds, n, start, readN)
	case err != nil:
		return nil, fmt.Errorf("read range error: %w", err)
	}
	return b, nil
}
