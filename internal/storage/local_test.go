package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestObjectStore(t *testing.T) (*LocalObjectStore, string) {
	t.Helper()
	dir := t.TempDir()
	objectStore, err := NewLocalObjectStore(dir)
	require.NoError(t, err)
	return objectStore, dir
}

func TestLocalObjectStore_PutGetObject(t *testing.T) {
	objectStore, baseDir := setupTestObjectStore(t)
	ctx := context.Background()

	content := []byte(`{"intercept": 1, "coefficients": [1, 2]}`)
	require.NoError(t, objectStore.PutObject(ctx, "models", "fuel/v1/model.json", bytes.NewReader(content)))

	data, err := os.ReadFile(filepath.Join(baseDir, "models", "fuel", "v1", "model.json"))
	require.NoError(t, err)
	assert.Equal(t, content, data)

	obj, err := objectStore.GetObject(ctx, "models", "fuel/v1/model.json")
	require.NoError(t, err)
	defer obj.Close()

	read, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, content, read)

	_, err = objectStore.GetObject(ctx, "models", "missing.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalObjectStore_DownloadObject(t *testing.T) {
	objectStore, _ := setupTestObjectStore(t)
	ctx := context.Background()

	require.NoError(t, objectStore.PutObject(ctx, "models", "model.json", bytes.NewReader([]byte("new"))))

	dest := filepath.Join(t.TempDir(), "nested", "model.json")
	require.NoError(t, objectStore.DownloadObject(ctx, "models", "model.json", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	existing := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))
	err = objectStore.DownloadObject(ctx, "models", "missing.json", existing)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	data, err = os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "failed download must not touch the destination")

	entries, err := os.ReadDir(filepath.Dir(existing))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalObjectStore_ListAndStatObjects(t *testing.T) {
	objectStore, _ := setupTestObjectStore(t)
	ctx := context.Background()

	for _, key := range []string{"fuel/model.json", "fuel/manifest.yaml", "other/model.onnx"} {
		require.NoError(t, objectStore.PutObject(ctx, "models", key, bytes.NewReader([]byte(key))))
	}

	objects, err := objectStore.ListObjects(ctx, "models", "fuel/")
	require.NoError(t, err)
	assert.Equal(t, []Object{
		{Name: "fuel/manifest.yaml", Size: int64(len("fuel/manifest.yaml"))},
		{Name: "fuel/model.json", Size: int64(len("fuel/model.json"))},
	}, objects)

	empty, err := objectStore.ListObjects(ctx, "no-such-bucket", "")
	require.NoError(t, err)
	assert.Empty(t, empty)

	obj, err := StatObject(ctx, objectStore, "models", "other/model.onnx")
	require.NoError(t, err)
	assert.Equal(t, int64(len("other/model.onnx")), obj.Size)

	_, err = StatObject(ctx, objectStore, "models", "fuel/model")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestFetchArtifact(t *testing.T) {
	objectStore, _ := setupTestObjectStore(t)
	ctx := context.Background()

	for _, key := range []string{"fuel/v2/manifest.yaml", "fuel/v2/artifacts/model.json", "fuel/v3/model.json"} {
		require.NoError(t, objectStore.PutObject(ctx, "models", key, bytes.NewReader([]byte(key))))
	}

	t.Run("SingleObject", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, FetchArtifact(ctx, objectStore, "models", "fuel/v3/model.json", dest))

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "fuel/v3/model.json", string(data))
	})

	t.Run("Prefix", func(t *testing.T) {
		dest := t.TempDir()
		require.NoError(t, FetchArtifact(ctx, objectStore, "models", "fuel/v2/", dest))

		assert.FileExists(t, filepath.Join(dest, "manifest.yaml"))
		assert.FileExists(t, filepath.Join(dest, "artifacts", "model.json"))
		assert.NoFileExists(t, filepath.Join(dest, "model.json"))
	})

	t.Run("EmptyPrefix", func(t *testing.T) {
		err := FetchArtifact(ctx, objectStore, "models", "fuel/v9/", t.TempDir())
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})
}
