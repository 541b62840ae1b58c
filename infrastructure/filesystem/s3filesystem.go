package filesystem

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Filesystem stores check-in photos and exported reports.
type S3Filesystem struct {
	bucket string
	client *s3.Client
}

func New(ctx context.Context, bucket string) (*S3Filesystem, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &S3Filesystem{bucket: bucket, client: s3.NewFromConfig(cfg)}, nil
}

func (fs *S3Filesystem) ReadFile(ctx context.Context, key string, outStream io.Writer) error {
	resp, err := fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get object %s from bucket %s: %w", key, fs.bucket, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(outStream, resp.Body); err != nil {
		return fmt.Errorf("failed to copy object %s from bucket %s: %w", key, fs.bucket, err)
	}
	return nil
}

func (fs *S3Filesystem) UploadFile(ctx context.Context, key string, body io.Reader) error {
	_, err := fs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, fs.bucket, err)
	}
	return nil
}

// PurgeMediaBefore deletes every object last modified before cutoff.
// Used by the data-cleanup job; the bucket holds nothing but attendance
// media.
func (fs *S3Filesystem) PurgeMediaBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64

	paginator := s3.NewListObjectsV2Paginator(fs.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(fs.bucket),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, fmt.Errorf("failed to list objects in bucket %s: %w", fs.bucket, err)
		}

		var stale []types.ObjectIdentifier
		for _, obj := range page.Contents {
			if obj.Key == nil || obj.LastModified == nil {
				continue
			}
			if obj.LastModified.Before(cutoff) {
				stale = append(stale, types.ObjectIdentifier{Key: obj.Key})
			}
		}
		if len(stale) == 0 {
			continue
		}

		out, err := fs.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(fs.bucket),
			Delete: &types.Delete{Objects: stale, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete objects in bucket %s: %w", fs.bucket, err)
		}
		deleted += int64(len(stale) - len(out.Errors))
	}

	return deleted, nil
}
