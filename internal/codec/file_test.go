package codec

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomicReplacesTarget(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "out.txt", "old\n")

	err := writeAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "new\n")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "new\n", readFile(t, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(outputPerm), info.Mode().Perm())
}

func TestWriteAtomicFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	boom := errors.New("boom")

	err := writeAtomic(path, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no target and no temp file should remain")
}

func TestReplaceAtomicFailureKeepsOldTarget(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "out.db", "old")
	boom := errors.New("boom")

	err := replaceAtomic(path, func(tmpPath string) error {
		require.NoError(t, os.WriteFile(tmpPath, []byte("partial"), 0o600))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "old", readFile(t, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomicMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.txt")
	err := writeAtomic(path, func(io.Writer) error { return nil })
	require.Error(t, err)
	assert.NoFileExists(t, path)
}
