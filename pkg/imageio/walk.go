package imageio

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// image file extensions accepted by List, lower-case
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// IsImagePath reports whether path has a supported image extension
// (case-insensitive).
func IsImagePath(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// List walks root recursively and returns every file with a supported image
// extension, in lexical order. The returned slice can be iterated any number
// of times.
func List(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsImagePath(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
