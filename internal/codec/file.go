package codec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// outputPerm is applied to every written file before it is renamed into place.
const outputPerm = 0o644

// writeAtomic writes a file through fn using the temp-file, fsync, rename
// pattern. The target is never left partially written; on failure the temp
// file is removed and the target is untouched.
func writeAtomic(path string, fn func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := fn(w); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	return commit(tmpName, path)
}

// replaceAtomic is writeAtomic for writers that need a file path rather than
// an io.Writer. fn receives the path of an empty temp file next to the target.
func replaceAtomic(path string, fn func(tmpPath string) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := fn(tmpName); err != nil {
		os.Remove(tmpName)
		return err
	}
	return commit(tmpName, path)
}

func commit(tmpName, path string) error {
	if err := os.Chmod(tmpName, outputPerm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// openRead opens path for a codec read. The caller closes the file.
func openRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// parseError wraps err as ErrParse naming the file.
func parseError(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrParse, path, err)
}
