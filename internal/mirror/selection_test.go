package mirror_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/mirror"
)

func TestFileSelectionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection")
	sel := mirror.NewFileSelection(path)

	_, ok, err := sel.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sel.Save(7))

	id, ok, err := sel.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, id)

	// Stored as a string-encoded integer.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7", string(data))

	require.NoError(t, sel.Clear())
	_, ok, err = sel.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileSelectionGarbageReadsAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection")
	require.NoError(t, os.WriteFile(path, []byte("not a number"), 0600))

	sel := mirror.NewFileSelection(path)
	_, ok, err := sel.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileSelectionClearIsIdempotent(t *testing.T) {
	sel := mirror.NewFileSelection(filepath.Join(t.TempDir(), "selection"))
	require.NoError(t, sel.Clear())
	require.NoError(t, sel.Clear())
}
