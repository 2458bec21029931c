package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kikuuuty/ddsconv/internal/tex"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory.
	RelPath string
	// Key is the report key (relpath without extension).
	Key string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions lists recognized image file extensions. A trailing .zst
// is stripped before lookup.
var imageExtensions = map[string]bool{
	".dds":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".tga":  true,
	".qoi":  true,
}

// imageExt returns the recognized extension of path, including a .zst
// suffix, or "" when the file is not an image.
func imageExt(path string) string {
	inner := path
	if strings.EqualFold(filepath.Ext(path), tex.ZstdExt) {
		inner = path[:len(path)-len(tex.ZstdExt)]
	}
	ext := filepath.Ext(inner)
	if !imageExtensions[strings.ToLower(ext)] {
		return ""
	}
	return path[len(inner)-len(ext):]
}

// ScanImages walks the input directory and returns all image sources.
func ScanImages(inputDir string) ([]Source, error) {
	var sources []Source

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(info.Name(), ".") && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := imageExt(path)
		if ext == "" {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: filepath.ToSlash(relPath),
			Key:     filepath.ToSlash(relPath[:len(relPath)-len(ext)]),
			Size:    info.Size(),
		})
		return nil
	})

	return sources, err
}

// DefaultOutput returns path with its image extension (and any .zst
// suffix) replaced by .dds.
func DefaultOutput(path string) string {
	if ext := imageExt(path); ext != "" {
		return path[:len(path)-len(ext)] + ".dds"
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".dds"
}
