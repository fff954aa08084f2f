package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rabenherz112/compose-manager/internal/core/document"
)

// =============================================================================
// Load
// =============================================================================

// Load reads the compose file at path into an editable tree. A missing file
// maps to ErrNotFound; malformed content surfaces the document package's
// ParseError verbatim.
func Load(path string) (*document.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &StoreError{Op: "Load", Path: path, Err: ErrNotFound}
		}
		return nil, &StoreError{Op: "Load", Path: path, Err: err}
	}
	tree, err := document.Parse(data)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// LoadOrEmpty is Load with the first-run case folded in: a missing file
// yields an empty tree.
func LoadOrEmpty(path string) (*document.Tree, error) {
	tree, err := Load(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return document.NewTree(), nil
		}
		return nil, err
	}
	return tree, nil
}

// =============================================================================
// Write
// =============================================================================

// Write serializes the tree and atomically replaces path with the result.
// Encoding happens before the target is touched, the bytes go to a
// temporary file in the target directory, and only a fully synced temp file
// is renamed into place. On any failure the temp file is removed and the
// previous file, if any, is left exactly as it was.
func Write(tree *document.Tree, path string) error {
	data, err := tree.Encode()
	if err != nil {
		return &StoreError{Op: "Write", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StoreError{Op: "Write", Path: path, Err: err}
	}

	// CreateTemp opens 0600; carry over the target's mode so the rename
	// does not tighten an existing file's permissions
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &StoreError{Op: "Write", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StoreError{Op: "Write", Path: path, Err: err}
	}
	if err := writeAndClose(tmp, data); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "Write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "Write", Path: path, Err: err}
	}
	return nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return nil
}
