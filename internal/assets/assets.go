package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gadgetry/gadgetc/internal/filemap"
)

// Copy copies every target verbatim to its destination under outDir,
// preserving permissions.
func Copy(outDir string, targets []filemap.CopyTarget) error {
	for _, t := range targets {
		dst := filepath.Join(outDir, filepath.FromSlash(t.Dest))
		if err := copyFile(t.Source, dst); err != nil {
			return fmt.Errorf("copying %s to %s: %w", t.Source, dst, err)
		}
	}
	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return WriteFileAtomic(dst, data, srcInfo.Mode().Perm())
}

// WriteFileAtomic writes data to a temporary file next to name and renames
// it into place, creating parent directories as needed. Readers never see
// a partially written file.
func WriteFileAtomic(name string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, name)
}

// RemoveAll clears dir, refusing to touch the filesystem root.
func RemoveAll(dir string) error {
	clean := filepath.Clean(dir)
	if clean == string(filepath.Separator) || clean == "." || filepath.VolumeName(clean) == clean {
		return fmt.Errorf("refusing to remove %s", dir)
	}
	if err := os.RemoveAll(clean); err != nil {
		return fmt.Errorf("removing %s: %w", clean, err)
	}
	return nil
}
