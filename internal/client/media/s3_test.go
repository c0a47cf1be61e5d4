package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestNewS3Uploader_AppliesConfig(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minio", creds.AccessKeyID)
		return aws.Config{Region: lo.Region}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &fakePutter{}
	}

	u, err := NewS3Uploader(context.Background(), Config{
		Region: "eu-west-1", Endpoint: "http://127.0.0.1:9000", AccessKey: "minio", SecretKey: "secret", Bucket: "media",
	})
	require.NoError(t, err)
	assert.Equal(t, "media", u.bucket)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Uploader_Errors(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), Config{})
	require.ErrorContains(t, err, "bucket is required")

	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err = NewS3Uploader(context.Background(), Config{Bucket: "b"})
	require.ErrorContains(t, err, "load aws config")
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "take.mp3")
	require.NoError(t, os.WriteFile(p, []byte("ID3"), 0o600))

	fp := &fakePutter{}
	u := &S3Uploader{client: fp, bucket: "media"}

	uri, err := u.Upload(context.Background(), "u1", p)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fp.key, "media/u1/"))
	assert.True(t, strings.HasSuffix(fp.key, ".mp3"))
	assert.Equal(t, "s3://media/"+fp.key, uri)
	assert.Equal(t, []byte("ID3"), fp.body)
	assert.Equal(t, "audio/mpeg", fp.contentType)

	_, err = u.Upload(context.Background(), "u1", filepath.Join(dir, "missing.m4a"))
	require.ErrorContains(t, err, "open media file")

	u.client = &fakePutter{err: errors.New("access denied")}
	_, err = u.Upload(context.Background(), "u1", p)
	require.ErrorContains(t, err, "access denied")
}
