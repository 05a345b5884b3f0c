package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Storage.
// *s3.Client satisfies it.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Storage stores each key as one object in an S3 bucket.
//
// It is meant for a local area shared by several processes: combined with a
// cross-process Bus, every process sees the others' writes.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := storage.NewS3Storage(s3.NewFromConfig(cfg), "my-bucket",
//	    storage.WithS3Prefix("prefs/"))
type S3Storage struct {
	client  S3API
	bucket  string
	prefix  string
	timeout time.Duration
}

// S3Option configures an S3Storage.
type S3Option func(*S3Storage)

// WithS3Prefix sets the object key prefix (e.g. "prefs/").
func WithS3Prefix(prefix string) S3Option {
	return func(s *S3Storage) {
		s.prefix = prefix
	}
}

// WithS3Timeout bounds each S3 call. Default: 10s.
func WithS3Timeout(d time.Duration) S3Option {
	return func(s *S3Storage) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewS3Storage creates a Storage backed by bucket.
func NewS3Storage(client S3API, bucket string, opts ...S3Option) *S3Storage {
	s := &S3Storage{
		client:  client,
		bucket:  bucket,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *S3Storage) objectKey(key string) string {
	return s.prefix + key
}

func (s *S3Storage) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// GetItem fetches the object for key. A missing object reports absent.
func (s *S3Storage) GetItem(key string) (string, bool, error) {
	ctx, cancel := s.context()
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: s3 get %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", false, fmt.Errorf("storage: s3 read %q: %w", key, err)
	}
	return string(data), true, nil
}

// SetItem writes value as the object for key.
func (s *S3Storage) SetItem(key, value string) error {
	ctx, cancel := s.context()
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        strings.NewReader(value),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 put %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes the object for key.
func (s *S3Storage) RemoveItem(key string) error {
	ctx, cancel := s.context()
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 delete %q: %w", key, err)
	}
	return nil
}

// Keys lists the keys stored under the prefix.
func (s *S3Storage) Keys() ([]string, error) {
	ctx, cancel := s.context()
	defer cancel()

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage: s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), s.prefix))
		}
	}
	return keys, nil
}

// Clear deletes every object under the prefix.
func (s *S3Storage) Clear() error {
	keys, err := s.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.RemoveItem(key); err != nil {
			return err
		}
	}
	return nil
}
