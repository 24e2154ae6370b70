package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrObjectNotFound = errors.New("object not found")

type Object struct {
	Name string
	Size int64
}

// ObjectStore is where model artifacts live before they are loaded.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	PutObject(ctx context.Context, bucket, key string, data io.Reader) error

	DownloadObject(ctx context.Context, bucket, key, filename string) error

	ListObjects(ctx context.Context, bucket, prefix string) ([]Object, error)
}

// StatObject returns the object stored under exactly key.
func StatObject(ctx context.Context, store ObjectStore, bucket, key string) (Object, error) {
	objects, err := store.ListObjects(ctx, bucket, key)
	if err != nil {
		return Object{}, err
	}
	for _, obj := range objects {
		if obj.Name == key {
			return obj, nil
		}
	}
	return Object{}, ErrObjectNotFound
}

// FetchArtifact downloads key from the store to dest. A key ending in "/" is
// treated as a prefix and every object below it is downloaded into the dest
// directory, keeping the relative layout.
func FetchArtifact(ctx context.Context, store ObjectStore, bucket, key, dest string) error {
	if !strings.HasSuffix(key, "/") {
		return store.DownloadObject(ctx, bucket, key, dest)
	}

	objects, err := store.ListObjects(ctx, bucket, key)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return fmt.Errorf("%w: no objects under %s/%s", ErrObjectNotFound, bucket, key)
	}

	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Name, key)
		if rel == "" {
			continue
		}
		if err := store.DownloadObject(ctx, bucket, obj.Name, filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
			return fmt.Errorf("error downloading artifact %s/%s to %s: %w", bucket, key, dest, err)
		}
	}
	return nil
}
