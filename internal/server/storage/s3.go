// Package storage implements the object-store client used for account media.
// It talks to any S3-compatible backend (MinIO in development) and is the
// only component that knows how storage keys map to public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/streamvault/accountd/internal/common"
	sc "github.com/streamvault/accountd/internal/server/config"
)

// AssetRef identifies one uploaded object: the retrievable URL handed to
// clients and the storage key needed to delete the object later.
type AssetRef struct {
	URL string
	Key string
}

// s3API is the subset of the S3 client used here, extracted for tests.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Client uploads and deletes media blobs. It is stateless: every asset it
// creates is owned by the account record that ends up referencing it.
type Client struct {
	api       s3API
	bucket    string
	publicURL string
}

func NewClient(cfg *sc.Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,     // MINIO_ROOT_USER
			cfg.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &Client{
		api:       api,
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimRight(cfg.S3PublicURL, "/"),
	}, nil
}

func newStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%02d/%v", d.Year(), d.Month(), uuid.New())
}

// Upload stores the file at localPath under a fresh storage key and returns
// its asset reference. Ownership of the local file transfers to Upload: it is
// removed whether or not the upload succeeds.
func (c *Client) Upload(ctx context.Context, localPath string) (*AssetRef, error) {
	defer os.Remove(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", common.ErrUpload, localPath, err)
	}
	defer f.Close()

	key := newStorageKey()
	if _, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpload, err)
	}

	return &AssetRef{URL: c.urlFor(key), Key: key}, nil
}

// Delete removes the object with the given key and reports whether it is
// gone. A missing object counts as already removed.
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	if _, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}); err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return true, nil
		}
		return false, fmt.Errorf("deleting %s: %w", key, err)
	}
	return true, nil
}

// KeyFromURL reverses urlFor. Account records persist only the URL of an
// asset, so the storage key of an old asset has to be recovered from it.
func (c *Client) KeyFromURL(url string) string {
	return strings.TrimPrefix(strings.TrimPrefix(url, c.publicURL), "/")
}

func (c *Client) urlFor(key string) string {
	return c.publicURL + "/" + key
}
