// Package objectstore defines the interface used to publish files to an
// object storage bucket, independently of the backing provider.
package objectstore

import (
	"context"
	"io"
)

// PutOptions carry the HTTP metadata stored with an object.
type PutOptions struct {
	ContentType  string // ContentType is served back as the Content-Type header.
	CacheControl string // CacheControl is served back as the Cache-Control header.
}

// Object describes a stored object.
type Object struct {
	Key  string // Key is the object name inside the bucket.
	ETag string // ETag is the provider entity tag of the stored content.
	Size int64  // Size is the number of bytes stored.
}

// Client is the abstraction for object storage buckets.
//
//go:generate mockgen -package mockobjectstore -source=interface.go -destination=mock/mockobjectstore.go *
type Client interface {
	// Put stores size bytes read from body under key, replacing any
	// existing object.
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (Object, error)
	// URL returns the public URL of key.
	URL(key string) string
}
