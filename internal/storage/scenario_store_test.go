package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioStoreListAndLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0755))

	store, err := NewScenarioStore(dir)
	require.NoError(t, err)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.yaml", "b.yml"}, names)

	data, err := store.Load("a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
	assert.Equal(t, 1, store.Cached())

	_, err = store.Load("../a.yaml")
	assert.Error(t, err)
}

func TestScenarioStoreRereadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	store, err := NewScenarioStore(dir)
	require.NoError(t, err)
	data, err := store.Load("a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	data, err = store.Load("a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	store.Invalidate()
	assert.Zero(t, store.Cached())
}

func TestScenarioStoreMissingDirectory(t *testing.T) {
	store, err := NewScenarioStore(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	empty, err := NewScenarioStore("")
	require.NoError(t, err)
	names, err = empty.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestScenarioStoreRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err := NewScenarioStore(path)
	assert.Error(t, err)
}
