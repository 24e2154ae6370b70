package integrationtests

import (
	"context"
	"encoding/json"
	"fuel-predictor/cmd"
	"fuel-predictor/internal/core"
	"fuel-predictor/internal/database"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresModelLoadHistory(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	db, err := database.NewDatabase(setupPostgresContainer(t, ctx))
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, []byte(linearArtifact), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, core.ManifestFile), []byte(manifest), 0644))

	res := core.LoadPredictor(dir, "", core.NewModelLoaders(core.LoaderConfig{}))
	require.True(t, res.Loaded(), "load error: %v", res.Err)
	require.NoError(t, cmd.RecordModelLoad(ctx, db, res))

	failed := core.NotLoaded(filepath.Join(dir, "missing.json"), os.ErrNotExist)
	failed.LoadedAt = res.LoadedAt.Add(time.Second)
	require.NoError(t, cmd.RecordModelLoad(ctx, db, failed))

	loads, err := database.ListModelLoads(ctx, db, 10)
	require.NoError(t, err)
	require.Len(t, loads, 2)

	assert.Equal(t, database.ModelLoadFailed, loads[0].Status)
	assert.True(t, loads[0].Error.Valid)

	assert.Equal(t, database.ModelLoaded, loads[1].Status)
	assert.Equal(t, string(core.Linear), loads[1].ModelType)
	assert.Equal(t, res.Checksum, loads[1].Checksum)

	var meta core.Manifest
	require.NoError(t, json.Unmarshal(loads[1].Metadata, &meta))
	assert.Equal(t, "2024.06", meta.Version)

	loads, err = database.ListModelLoads(ctx, db, 1)
	require.NoError(t, err)
	assert.Len(t, loads, 1)
}
