package objectclient

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	cfg "github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/config"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	logger   *slog.Logger
}

// LoadAWSConfig builds the shared AWS config. Static credentials are used
// when provided (local development); otherwise the default chain applies
// (IAM role in the container).
func LoadAWSConfig(ctx context.Context, c *cfg.Config) (aws.Config, error) {
	if c.AwsRegion == "" {
		return aws.Config{}, fmt.Errorf("AWS_REGION not set")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.AwsRegion),
	}
	if c.AwsAccessKey != "" && c.AwsSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AwsAccessKey, c.AwsSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

func NewS3Store(awsCfg aws.Config, bucket string, logger *slog.Logger) (core.ObjectStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		logger:   logger,
	}, nil
}

// Put uploads one object with its metadata. The uploader either completes
// the object or leaves nothing behind; partial objects are never visible.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	}

	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if _, err := s.uploader.Upload(ctxUpload, input); err != nil {
		return &core.StorageError{Key: key, Err: err}
	}

	s.logger.Info("uploaded object", "bucket", s.bucket, "key", key, "size", len(data))
	return nil
}

// Stats walks the document prefix and totals object count and size.
func (s *S3Store) Stats(ctx context.Context) (models.StorageStats, error) {
	var stats models.StorageStats

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(core.DocumentPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return models.StorageStats{}, &core.StorageError{Err: err}
		}
		for _, obj := range page.Contents {
			stats.DocumentCount++
			stats.TotalSizeBytes += aws.ToInt64(obj.Size)
		}
	}

	return stats, nil
}

// List returns every stored document, resolving source_url and uploaded_at
// from the object metadata written at upload time.
func (s *S3Store) List(ctx context.Context) ([]models.StoredDocument, error) {
	docs := []models.StoredDocument{}

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(core.DocumentPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &core.StorageError{Err: err}
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)

			doc := models.StoredDocument{
				StorageKey:   key,
				Filename:     path.Base(key),
				SizeBytes:    aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			}

			head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				// Metadata is best effort; the listing itself still stands.
				s.logger.Warn("head object failed", "key", key, "error", err)
			} else {
				doc.SourceURL = head.Metadata["source_url"]
				if ts, perr := time.Parse(time.RFC3339, head.Metadata["uploaded_at"]); perr == nil {
					doc.UploadedAt = ts
				}
			}

			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// DeleteAll removes every object under the document prefix in batches.
func (s *S3Store) DeleteAll(ctx context.Context) (int, error) {
	deleted := 0

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(core.DocumentPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, &core.StorageError{Err: err}
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, s3types.ObjectIdentifier{Key: obj.Key})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return deleted, &core.StorageError{Err: err}
		}
		deleted += len(objects) - len(out.Errors)
	}

	s.logger.Info("cleared document prefix", "bucket", s.bucket, "deleted", deleted)
	return deleted, nil
}

// Ping verifies bucket access for health checks.
func (s *S3Store) Ping(ctx context.Context) error {
	ctxPing, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.client.HeadBucket(ctxPing, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	}); err != nil {
		return &core.StorageError{Err: err}
	}
	return nil
}
