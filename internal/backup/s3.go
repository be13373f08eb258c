// Package backup copies the vault file to and from an S3 bucket. The
// envelope is moved as an opaque blob: backup never decrypts, and a restored
// file is usable with nothing but the vault password.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// loadDefaultAWSConfig is a test seam for the AWS config chain.
var loadDefaultAWSConfig = config.LoadDefaultConfig

// objectAPI is the subset of the S3 client used by backups.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Backup uploads and downloads vault envelopes under a key prefix in one
// bucket. Region and credentials come from the standard AWS environment and
// config chain.
type S3Backup struct {
	client objectAPI
	bucket string
	prefix string
}

// NewS3Backup builds an S3Backup using the default AWS configuration.
func NewS3Backup(ctx context.Context, bucket, prefix string) (*S3Backup, error) {
	cfg, err := loadDefaultAWSConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newS3Backup(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func newS3Backup(client objectAPI, bucket, prefix string) *S3Backup {
	return &S3Backup{client: client, bucket: bucket, prefix: prefix}
}

// makeObjectKey builds a unique, time-sortable object key.
func (b *S3Backup) makeObjectKey(now time.Time) string {
	return fmt.Sprintf("%s%s-%s.vault", b.prefix, now.UTC().Format("20060102T150405Z"), uuid.NewString())
}

// Upload copies the vault file at vaultPath to the bucket and returns the
// object key. Returns common.ErrorNotFound if there is no vault file yet.
func (b *S3Backup) Upload(ctx context.Context, vaultPath string) (string, error) {
	f, err := os.Open(vaultPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", common.ErrorNotFound, vaultPath)
		}
		return "", fmt.Errorf("open vault file: %w", err)
	}
	defer f.Close()

	key := b.makeObjectKey(time.Now())

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}
	return key, nil
}

// Download fetches the object under key and writes it to vaultPath with
// owner-only permissions. It refuses to overwrite an existing vault file:
// restoring over live data is a destructive call the user must make
// explicitly by moving the old file away first.
func (b *S3Backup) Download(ctx context.Context, key, vaultPath string) error {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download backup: %w", err)
	}
	defer out.Body.Close()

	f, err := os.OpenFile(vaultPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create vault file: %w", err)
	}

	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		_ = os.Remove(vaultPath)
		return fmt.Errorf("write vault file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(vaultPath)
		return fmt.Errorf("close vault file: %w", err)
	}
	return nil
}
