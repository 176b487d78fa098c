package export

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of the S3 client the uploader needs
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options locates the bucket. Endpoint and static keys are for
// S3-compatible stores such as MinIO.
type S3Options struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Uploader copies a finished export to object storage
type S3Uploader struct {
	client PutObjectAPI
	bucket string
	key    string
}

// NewS3Uploader wraps an existing client
func NewS3Uploader(client PutObjectAPI, bucket, key string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, key: key}
}

// NewS3UploaderFromOptions builds a client from the default AWS config chain
func NewS3UploaderFromOptions(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Uploader(client, opts.Bucket, opts.Key), nil
}

// Upload streams the file at path to the configured bucket and key
func (u *S3Uploader) Upload(ctx context.Context, path string, compressed bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open export %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat export %s: %w", path, err)
	}

	contentType := "application/x-ndjson"
	if compressed {
		contentType = "application/x-snappy-framed"
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(u.key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", u.bucket, u.key, err)
	}
	return nil
}

// Location returns the s3:// URL of the upload target
func (u *S3Uploader) Location() string {
	return fmt.Sprintf("s3://%s/%s", u.bucket, u.key)
}
