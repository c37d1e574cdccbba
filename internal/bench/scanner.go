package bench

import (
	"os"
	"path/filepath"
	"strings"
)

// Source is one discovered fixture: an image paired with its mask.
type Source struct {
	// Key is the fixture's relative path without extension or the
	// ".mask" suffix, using forward slashes.
	Key string
	// ImagePath/MaskPath are absolute paths on disk.
	ImagePath string
	MaskPath  string
	// Format is the source image's format, inferred from extension.
	Format string
	// Size is the source image's file size in bytes.
	Size int64
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// maskSuffix names the convention a fixture directory must follow:
// "<key>.<ext>" is the image, "<key>.mask.<ext>" is its selection mask.
const maskSuffix = ".mask"

// ScanFixtures walks dir and pairs each non-mask image with its
// ".mask" companion. Images without a matching mask are skipped (not
// an error — a fixture directory may also hold reference outputs).
func ScanFixtures(dir string) ([]Source, error) {
	byKey := make(map[string]*Source)
	var order []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && info.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !imageExtensions[ext] {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		stem := strings.TrimSuffix(relPath, ext)
		isMask := strings.HasSuffix(stem, maskSuffix)
		key := strings.TrimSuffix(stem, maskSuffix)

		src, ok := byKey[key]
		if !ok {
			src = &Source{Key: key}
			byKey[key] = src
			order = append(order, key)
		}

		if isMask {
			src.MaskPath = path
		} else {
			src.ImagePath = path
			src.Format = strings.TrimPrefix(ext, ".")
			if src.Format == "jpg" {
				src.Format = "jpeg"
			}
			if src.Format == "tif" {
				src.Format = "tiff"
			}
			src.Size = info.Size()
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	var sources []Source
	for _, key := range order {
		src := byKey[key]
		if src.ImagePath != "" && src.MaskPath != "" {
			sources = append(sources, *src)
		}
	}
	return sources, nil
}
