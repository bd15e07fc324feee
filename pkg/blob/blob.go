// Package blob reads and writes pipeline artifacts (datasets, figures) on the
// local filesystem or in an S3 bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidURI = errors.New("invalid blob uri")
)

// Store is a flat key/value object store.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Location is a parsed artifact address: a store plus a key inside it.
type Location struct {
	Scheme string // "s3" or "file"
	Bucket string
	Key    string
}

// IsRemote reports whether uri names an object store rather than a local path.
func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

// ParseURI splits s3://bucket/key addresses. Anything else is a local path
// whose directory becomes the store root.
func ParseURI(uri string) (Location, error) {
	if !IsRemote(uri) {
		if uri == "" {
			return Location{}, fmt.Errorf("%w: empty path", ErrInvalidURI)
		}
		return Location{Scheme: "file", Bucket: filepath.Dir(uri), Key: filepath.Base(uri)}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	return Location{Scheme: "s3", Bucket: u.Host, Key: key}, nil
}

// Open returns the store holding uri and the key to use with it.
func Open(ctx context.Context, uri string) (Store, string, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, "", err
	}
	if loc.Scheme == "s3" {
		store, err := NewS3Store(ctx, S3ConfigFromEnv(loc.Bucket))
		if err != nil {
			return nil, "", err
		}
		return store, loc.Key, nil
	}
	return NewFSStore(loc.Bucket), loc.Key, nil
}

// ContentType guesses the media type of an artifact from its key.
func ContentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".eps":
		return "application/postscript"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	}
	return "application/octet-stream"
}
