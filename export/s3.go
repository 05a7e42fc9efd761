package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of the S3 client the exporter needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink buffers the export and uploads it on Close.
type S3Sink struct {
	ctx    context.Context
	client PutObjectAPI
	bucket string
	key    string
	buffer bytes.Buffer
}

type S3SinkFactory struct {
	ctx    context.Context
	client PutObjectAPI
	bucket string
}

func NewS3SinkFactory(ctx context.Context, region, bucket string) (*S3SinkFactory, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewS3SinkFactoryWithClient(ctx, s3.NewFromConfig(cfg), bucket), nil
}

func NewS3SinkFactoryWithClient(ctx context.Context, client PutObjectAPI, bucket string) *S3SinkFactory {
	return &S3SinkFactory{ctx: ctx, client: client, bucket: bucket}
}

func (f *S3SinkFactory) NewSink(key string) (Sink, error) {
	if f.bucket == "" {
		return nil, fmt.Errorf("export: no S3 bucket configured")
	}
	return &S3Sink{ctx: f.ctx, client: f.client, bucket: f.bucket, key: key}, nil
}

func (w *S3Sink) Write(data []byte) (int, error) {
	return w.buffer.Write(data)
}

func (w *S3Sink) Close() error {
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(w.key),
		Body:        bytes.NewReader(w.buffer.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("unable to upload file to S3: %w", err)
	}
	return nil
}
