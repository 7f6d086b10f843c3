package s3source

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emilmelnikov/netzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient serves ranged GetObject calls out of a byte slice.
type fakeClient struct {
	data   []byte
	bucket string
	key    string
	calls  int
}

func (f *fakeClient) HeadObject(_ context.Context, input *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if aws.ToString(input.Bucket) != f.bucket || aws.ToString(input.Key) != f.key {
		return nil, fmt.Errorf("no such object")
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(f.data)))}, nil
}

func (f *fakeClient) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if aws.ToString(input.Bucket) != f.bucket || aws.ToString(input.Key) != f.key {
		return nil, fmt.Errorf("no such object")
	}

	var start, end int64
	if _, err := fmt.Sscanf(aws.ToString(input.Range), "bytes=%d-%d", &start, &end); err != nil {
		return nil, fmt.Errorf("bad range %q: %w", aws.ToString(input.Range), err)
	}
	if start < 0 || end < start || end >= int64(len(f.data)) {
		return nil, fmt.Errorf("range %q not satisfiable", aws.ToString(input.Range))
	}

	f.calls++
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(f.data[start : end+1])),
		ContentLength: aws.Int64(end + 1 - start),
	}, nil
}

func TestSource_ReadAt(t *testing.T) {
	ctx := context.Background()
	data := []byte("0123456789abcdef")
	client := &fakeClient{data: data, bucket: "my-bucket", key: "my-key"}

	src, err := New(ctx, client, "my-bucket", "my-key")
	require.NoError(t, err)

	size, err := src.Size(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), size)

	tests := []struct {
		name         string
		offset, size int64
		want         []byte
		wantErr      error
	}{
		{name: "prefix", offset: 0, size: 4, want: []byte("0123")},
		{name: "middle", offset: 6, size: 4, want: []byte("6789")},
		{name: "from end", offset: -4, size: 4, want: []byte("cdef")},
		{name: "to end", offset: 10, size: -1, want: []byte("abcdef")},
		{name: "empty", offset: 8, size: 0, want: []byte{}},
		{name: "past end", offset: 10, size: 7, wantErr: netzip.ErrOutOfBounds},
		{name: "before start", offset: -17, size: 1, wantErr: netzip.ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := src.ReadAt(ctx, tt.offset, tt.size)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// the empty read must not have made a request.
	assert.Equal(t, 4, client.calls)
}

// buildZip writes a stored-only archive; CreateRaw keeps the data descriptor
// flag clear.
func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, payload := range files {
		w, err := zw.CreateRaw(&zip.FileHeader{
			Name:               name,
			Method:             zip.Store,
			CRC32:              crc32.ChecksumIEEE(payload),
			CompressedSize64:   uint64(len(payload)),
			UncompressedSize64: uint64(len(payload)),
		})
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestSource_Archive(t *testing.T) {
	ctx := context.Background()

	buf := buildZip(t, map[string][]byte{
		"hello.txt":  []byte("Hello World!"),
		"nested/d.b": {0xca, 0xfe, 0xba, 0xbe},
	})
	client := &fakeClient{data: buf, bucket: "my-bucket", key: "archive.zip"}

	src, err := New(ctx, client, "my-bucket", "archive.zip")
	require.NoError(t, err)

	a, err := netzip.From(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())

	got, err := a.Get(ctx, "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello World!"), got)
}

func TestSource_ModifyInputs(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{data: []byte("payload"), bucket: "other-bucket", key: "my-key"}

	// redirect both calls to the bucket the fake actually serves.
	src, err := New(ctx, client, "my-bucket", "my-key", func(opts *Options) {
		opts.ModifyGetObjectInput = func(input *s3.GetObjectInput) *s3.GetObjectInput {
			input.Bucket = aws.String("other-bucket")
			return input
		}
		opts.ModifyHeadObjectInput = func(input *s3.HeadObjectInput) *s3.HeadObjectInput {
			input.Bucket = aws.String("other-bucket")
			return input
		}
	})
	require.NoError(t, err)

	got, err := src.ReadAt(ctx, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}
