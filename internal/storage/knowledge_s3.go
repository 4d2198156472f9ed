package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const DefaultKnowledgeObjectKey = "knowledge.md"

// S3KnowledgeStore keeps the knowledge document as a single object. Works
// against AWS S3 and MinIO.
type S3KnowledgeStore struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader
	bucket     string
	key        string
}

var _ KnowledgeStore = (*S3KnowledgeStore)(nil)

func NewS3KnowledgeStore(ctx context.Context, cfg S3ClientConfig, bucket, key string) (*S3KnowledgeStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if key == "" {
		key = DefaultKnowledgeObjectKey
	}

	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize s3 client: %w", err)
	}

	store := &S3KnowledgeStore{
		client:     client,
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
		bucket:     bucket,
		key:        key,
	}

	if err := store.createBucket(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *S3KnowledgeStore) createBucket(ctx context.Context) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var existErr *types.BucketAlreadyExists
		var ownedErr *types.BucketAlreadyOwnedByYou
		if errors.As(err, &existErr) || errors.As(err, &ownedErr) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}

	slog.Info("bucket created successfully", "bucket", s.bucket)
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}

func (s *S3KnowledgeStore) Load(ctx context.Context) (string, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if isNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat s3://%s/%s: %w", s.bucket, s.key, err)
	}

	buffer := manager.NewWriteAtBuffer(make([]byte, aws.ToInt64(head.ContentLength)))

	if _, err := s.downloader.Download(ctx, buffer, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	}); err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, s.key, err)
	}

	return string(buffer.Bytes()), nil
}

func (s *S3KnowledgeStore) Save(ctx context.Context, content string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/markdown; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucket, s.key, err)
	}

	slog.Info("knowledge base uploaded", "bucket", s.bucket, "key", s.key, "bytes", len(content))
	return nil
}
