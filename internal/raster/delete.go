package raster

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var imageSuffixes = []string{".tif", ".tiff", ".png", ".jpg", ".jpeg"}

// DeleteDataset removes a dataset directory. It refuses to delete
// directories containing anything other than downloaded images and
// the manifest files, so a mistyped path cannot wipe unrelated data.
func DeleteDataset(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return eris.Wrapf(err, "raster: read dataset dir %s", dir)
	}

	for _, e := range entries {
		if e.IsDir() {
			return eris.Errorf("raster: %s contains subdirectory %s, refusing to delete",
				dir, e.Name())
		}
		if !deletable(e.Name()) {
			return eris.Errorf("raster: %s contains unexpected file %s, refusing to delete",
				dir, e.Name())
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return eris.Wrapf(err, "raster: delete dataset %s", dir)
	}
	zap.L().Info("dataset deleted", zap.String("path", dir), zap.Int("files", len(entries)))
	return nil
}

func deletable(name string) bool {
	if name == manifestName || name == polygonName {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range imageSuffixes {
		if ext == s {
			return true
		}
	}
	return false
}
