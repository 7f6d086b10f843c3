// Package s3source provides a netzip.Source over an S3 object using ranged
// GetObject calls, so an archive can be indexed and read without downloading
// it in full.
package s3source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emilmelnikov/netzip"
)

// Client abstracts the S3 APIs that are needed to implement a Source.
type Client interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options customises New.
type Options struct {
	// ModifyGetObjectInput can be used to modify the GetObject input
	// parameters such as adding ExpectedBucketOwner.
	//
	// Its return value will be used to make the GetObject call.
	ModifyGetObjectInput func(*s3.GetObjectInput) *s3.GetObjectInput

	// ModifyHeadObjectInput can be used to modify the HeadObject input
	// parameters such as adding ExpectedBucketOwner.
	//
	// Its return value will be used to make the HeadObject call. Used only by
	// New.
	ModifyHeadObjectInput func(*s3.HeadObjectInput) *s3.HeadObjectInput
}

// Source is a netzip.Source backed by ranged S3 GetObject calls. It is safe
// for concurrent reads; every ReadAt issues an independent request.
type Source struct {
	client      Client
	bucket, key string
	size        int64
	goiFn       func(*s3.GetObjectInput) *s3.GetObjectInput
}

var _ netzip.Source = (*Source)(nil)

// New returns a Source with the given bucket and key.
//
// The client is used right away for a HeadObject call to determine a valid
// size for the object.
func New(ctx context.Context, client Client, bucket, key string, optFns ...func(*Options)) (*Source, error) {
	opts := &Options{
		ModifyGetObjectInput: func(input *s3.GetObjectInput) *s3.GetObjectInput {
			return input
		},
		ModifyHeadObjectInput: func(input *s3.HeadObjectInput) *s3.HeadObjectInput {
			return input
		},
	}
	for _, fn := range optFns {
		fn(opts)
	}

	headObjectOutput, err := client.HeadObject(ctx, opts.ModifyHeadObjectInput(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}))
	if err != nil {
		return nil, fmt.Errorf("determine object size error: %w", err)
	}

	return &Source{
		client: client,
		bucket: bucket,
		key:    key,
		size:   aws.ToInt64(headObjectOutput.ContentLength),
		goiFn:  opts.ModifyGetObjectInput,
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

	getObjectOutput, err := s.client.GetObject(ctx, s.goiFn(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, start+n-1)),
	}))
	if err != nil {
		return nil, fmt.Errorf("get object range error: %w", err)
	}

	b := make([]byte, n)
	readN, err := io.ReadFull(getObjectOutput.Body, b)
	_ = getObjectOutput.Body.Close()
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: read %d bytes at offset %d, got %d", netzip.ErrOutOfBounds, n, start, readN)
	case err != nil:
		return nil, fmt.Errorf("read object range error: %w", err)
	}
	return b, nil
}
