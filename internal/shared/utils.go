package shared

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"easyupdate-go/internal/logging"

	"github.com/spf13/afero"
)

var log = logging.L("shared")

// CheckAndCreateDir makes sure dir exists on fs.
func CheckAndCreateDir(fs afero.Fs, dir string) error {
	if _, err := fs.Stat(dir); os.IsNotExist(err) {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			log.Printf("failed to create directory %s: %v", dir, err)
			return err
		}
	} else if err != nil {
		log.Printf("failed to check directory %s: %v", dir, err)
		return err
	}
	return nil
}

// CalculateSHA256 returns the hex encoded SHA-256 of the file at path.
func CalculateSHA256(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
