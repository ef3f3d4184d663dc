package artifact

import (
	"archive/zip"
	"errors"

	"github.com/spf13/afero"
)

// ManifestEntry is the entry every Android package archive carries.
const ManifestEntry = "AndroidManifest.xml"

var ErrNoManifest = errors.New("archive has no " + ManifestEntry)

// ZipInspector treats a file as a valid package when it opens as a zip
// archive containing the manifest entry.
type ZipInspector struct{}

func (ZipInspector) Inspect(fs afero.Fs, path string) error {
	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return err
	}
	for _, entry := range zr.File {
		if entry.Name == ManifestEntry {
			return nil
		}
	}
	return ErrNoManifest
}
