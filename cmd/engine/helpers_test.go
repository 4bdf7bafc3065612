package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companyclean-engine/internal/config"
)

func TestWriteFileJSONReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "companies.json")

	require.NoError(t, writeFileJSON(context.Background(), path, []string{"a"}))
	require.NoError(t, writeFileJSON(context.Background(), path, []string{"b", "c"}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []string
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, []string{"b", "c"}, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file left behind")
}

func TestWriteFileJSONCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "r.json")
	require.ErrorIs(t, writeFileJSON(ctx, path, map[string]int{"n": 1}), context.Canceled)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReadInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(a, []byte(`[{"company_name":"A"}]`), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(`{"company_name":"B"`), 0o644))

	got, err := readInputs([]string{a, b})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, `{"company_name":"B"`, string(got[1]))

	_, err = readInputs([]string{filepath.Join(dir, "missing.json")})
	assert.ErrorContains(t, err, "missing.json")
}

func TestStorePath(t *testing.T) {
	old := dataDir
	t.Cleanup(func() { dataDir = old })
	dataDir = "/var/lib/cc"

	cfg := config.Default()
	cfg.Store.Path = "engine.db"
	assert.Equal(t, filepath.Join("/var/lib/cc", "engine.db"), storePath(cfg))

	cfg.Store.Path = "/tmp/x.db"
	assert.Equal(t, "/tmp/x.db", storePath(cfg))

	cfg.Store.Path = ""
	assert.Empty(t, storePath(cfg))
}
