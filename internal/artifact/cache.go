// Package artifact manages the single cached update package on disk.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/logging"
	"easyupdate-go/internal/shared"

	"github.com/spf13/afero"
)

var log = logging.L("artifact")

// Inspector reads the package metadata of an archive. A nil error means the
// file is a structurally valid package.
type Inspector interface {
	Inspect(fs afero.Fs, path string) error
}

// Cache owns the deterministic artifact path under dir.
type Cache struct {
	fs        afero.Fs
	dir       string
	inspector Inspector
}

// NewCache creates a cache rooted at dir. A nil inspector defaults to ZipInspector.
func NewCache(fs afero.Fs, dir string, inspector Inspector) *Cache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if inspector == nil {
		inspector = ZipInspector{}
	}
	return &Cache{fs: fs, dir: dir, inspector: inspector}
}

// Fs exposes the underlying filesystem.
func (c *Cache) Fs() afero.Fs { return c.fs }

// Path returns <dir>/update_v<versionName>.apk.
func (c *Cache) Path(versionName string) string {
	return filepath.Join(c.dir, fmt.Sprintf("update_v%s.apk", versionName))
}

// Exists reports whether a regular file is present at path.
func (c *Cache) Exists(path string) bool {
	info, err := c.fs.Stat(path)
	return err == nil && !info.IsDir()
}

// Validate runs the structural check on path. Any inspector failure is
// reported as a ValidationError.
func (c *Cache) Validate(path string) error {
	if err := c.inspector.Inspect(c.fs, path); err != nil {
		log.Debug("artifact failed inspection", logging.KeyPath, path, logging.KeyError, err)
		return cstmerr.NewValidationError(path, err)
	}
	return nil
}

// Remove deletes the artifact. A missing file is not an error.
func (c *Cache) Remove(path string) error {
	if err := c.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return cstmerr.NewFileDeleteError(fmt.Sprintf("failed to delete artifact %s", path), err)
	}
	log.Printf("Removed artifact %s", path)
	return nil
}

// Create truncates or creates the artifact for writing, creating the cache
// directory when needed.
func (c *Cache) Create(path string) (afero.File, error) {
	if err := shared.CheckAndCreateDir(c.fs, filepath.Dir(path)); err != nil {
		return nil, cstmerr.NewFileIOError(fmt.Sprintf("failed to create cache directory for %s", path), err)
	}
	f, err := c.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, cstmerr.NewFileIOError(fmt.Sprintf("failed to create artifact %s", path), err)
	}
	return f, nil
}

// Digest returns the hex SHA-256 of the artifact. It is recorded for
// auditing and never compared against anything.
func (c *Cache) Digest(path string) (string, error) {
	sum, err := shared.CalculateSHA256(c.fs, path)
	if err != nil {
		return "", cstmerr.NewFileIOError(fmt.Sprintf("failed to hash artifact %s", path), err)
	}
	return sum, nil
}
