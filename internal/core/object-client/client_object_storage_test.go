package objectclient

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/markdave123-py/themis/internal/config"
)

type fakeS3 struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = *in.Bucket, *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestGetFile(t *testing.T) {
	fake := &fakeS3{body: "%PDF-1.4 ..."}
	c := &S3Client{client: fake, maxBytes: 1 << 20}

	got, err := c.GetFile(context.Background(), "docs", "a/b.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 ...", string(got))
	assert.Equal(t, "docs", fake.bucket)
	assert.Equal(t, "a/b.pdf", fake.key)
}

func TestGetFileTooLarge(t *testing.T) {
	c := &S3Client{client: &fakeS3{body: strings.Repeat("x", 11)}, maxBytes: 10}

	_, err := c.GetFile(context.Background(), "docs", "big")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 10 bytes")
}

func TestGetFileError(t *testing.T) {
	c := &S3Client{client: &fakeS3{err: errors.New("NoSuchKey")}}

	_, err := c.GetFile(context.Background(), "docs", "missing")
	assert.ErrorContains(t, err, "s3 get failed")
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := ParseS3URL("s3://contexta-docs/users/1/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "contexta-docs", bucket)
	assert.Equal(t, "users/1/report.pdf", key)

	for _, bad := range []string{"https://x/y", "s3://bucket-only", "s3:///key"} {
		_, _, err := ParseS3URL(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewS3ClientRequiresCredentials(t *testing.T) {
	_, err := NewS3Client(context.Background(), &cfg.Config{AwsRegion: "us-east-2"})
	assert.ErrorContains(t, err, "AWS credentials not set")
}
