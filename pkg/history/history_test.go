package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	lines := Normalize([]any{
		"plain command",
		"tab\tseparated",
		"  spaced  ",
		"",
		"   ",
		42,
		"multi\nline\nvalue",
	})
	assert.Equal(t, []string{
		"plain command",
		"tabseparated",
		"spaced",
		"42",
		"multilinevalue",
	}, lines)
}

func TestStoreSaveTruncatesToMostRecent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.txt")
	store := NewStore(path, 3)

	require.NoError(t, store.Save([]any{"one", "two", "three", "four", "five"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "three\nfour\nfive\n", string(raw), "newline-terminated, most recent kept")
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "history.txt")
	store := NewStore(path, 10)

	require.NoError(t, store.Save([]any{"alpha", "", "beta"}))
	lines, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, lines)
}

func TestStoreLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "absent.txt"), 10)
	lines, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestStoreSaveEmptyHistory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.txt")
	store := NewStore(path, 5)
	require.NoError(t, store.Save(nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, string(raw))
}
