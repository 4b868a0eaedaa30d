package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource_Fetch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "record.json")
	content := []byte(`{"total_test_cases": 850, "successful_cases": 833, "timestamp": 1787216612.482}`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	src := NewFileSource()
	require.NoError(t, src.Start(context.Background()))

	t.Run("bare path", func(t *testing.T) {
		data, err := src.Fetch(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, content, data)
	})

	t.Run("file url", func(t *testing.T) {
		data, err := src.Fetch(context.Background(), "file://"+path)
		require.NoError(t, err)
		assert.Equal(t, content, data)
	})

	t.Run("missing file", func(t *testing.T) {
		data, err := src.Fetch(context.Background(), filepath.Join(dir, "absent.json"))
		require.Error(t, err)
		assert.Nil(t, data)
	})

	require.NoError(t, src.Stop())
}

func TestFileSource_Kind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindFile, NewFileSource().Kind())
}
