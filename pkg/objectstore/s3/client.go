// Package s3 provides an objectstore.Client implementation for S3-compatible
// storage (Yandex Object Storage, AWS S3, MinIO) backed by minio-go.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"showroom/pkg/objectstore"
	"showroom/pkg/serrors"
)

// Options configure the bucket connection.
type Options struct {
	Endpoint        string // Endpoint is the S3 API host without scheme.
	Region          string // Region is the bucket region; empty asks the server.
	Bucket          string // Bucket is the target bucket name.
	UseSSL          bool   // UseSSL selects https.
	AccessKeyID     string // AccessKeyID is the static access key.
	SecretAccessKey string // SecretAccessKey is the static secret key.
	// Transport replaces the default HTTP transport, mostly for tests.
	Transport http.RoundTripper
}

// Client stores objects in a single bucket. It is safe for concurrent use.
type Client struct {
	minio  *minio.Client
	bucket string
	base   string
}

// New validates o and constructs a Client. No request is made.
func New(o Options) (*Client, error) {
	var missing []string
	if o.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if o.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if o.AccessKeyID == "" || o.SecretAccessKey == "" {
		missing = append(missing, "credentials")
	}
	if len(missing) > 0 {
		return nil, serrors.With(serrors.ErrInvalidConfig, "storage %s not configured", strings.Join(missing, ", "))
	}

	mc, err := minio.New(o.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(o.AccessKeyID, o.SecretAccessKey, ""),
		Secure:       o.UseSSL,
		Region:       o.Region,
		Transport:    o.Transport,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrInvalidConfig, err, "could not create storage client")
	}

	scheme := "http"
	if o.UseSSL {
		scheme = "https"
	}

	return &Client{
		minio:  mc,
		bucket: o.Bucket,
		base:   scheme + "://" + o.Endpoint + "/" + o.Bucket + "/",
	}, nil
}

// Put uploads body under key.
func (c *Client) Put(
	ctx context.Context,
	key string,
	body io.Reader,
	size int64,
	opts objectstore.PutOptions,
) (objectstore.Object, error) {
	info, err := c.minio.PutObject(ctx, c.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
	})
	if err != nil {
		return objectstore.Object{}, classify(err, key)
	}

	return objectstore.Object{Key: info.Key, ETag: info.ETag, Size: info.Size}, nil
}

// URL returns the path-style public URL of key.
func (c *Client) URL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return c.base + strings.Join(segments, "/")
}

func classify(err error, key string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return serrors.Wrap(serrors.ErrTimeout, err, "upload of %s timed out", key)
	}

	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchBucket":
		return serrors.Wrap(serrors.ErrNotFound, err, "bucket does not exist")
	case resp.Code == "AccessDenied" || resp.Code == "InvalidAccessKeyId" || resp.Code == "SignatureDoesNotMatch":
		return serrors.Wrap(serrors.ErrInvalidConfig, err, "storage rejected credentials")
	case resp.StatusCode >= http.StatusInternalServerError:
		return serrors.Wrap(serrors.ErrUnavailable, err, "storage unavailable")
	default:
		return fmt.Errorf("could not upload %s: %w", key, err)
	}
}

// Ensure Client conforms to the objectstore.Client interface at compile time.
var _ objectstore.Client = (*Client)(nil)
