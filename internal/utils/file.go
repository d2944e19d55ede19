package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the lowercased file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	switch GetFileExtension(filename) {
	case "jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp":
		return true
	}
	return false
}

// GenerateOutputFilename builds <dir>/<prefix><input name><suffix>-<id>.<format>.
// URLs and empty inputs are named "photo". The short random id keeps
// repeated runs from overwriting each other.
func GenerateOutputFilename(input, outputDir, prefix, suffix, format string) string {
	base := "photo"
	if input != "" && !strings.Contains(input, "://") {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	base = SanitizeFilename(base)
	if base == "" {
		base = "photo"
	}

	if format == "" {
		format = "jpg"
	}
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return filepath.Join(outputDir, fmt.Sprintf("%s%s%s-%s.%s", prefix, base, suffix, id, format))
}

// WithSuffix returns path with suffix inserted before the extension and the
// extension replaced by ext when ext is not empty
func WithSuffix(path, suffix, ext string) string {
	old := filepath.Ext(path)
	if ext == "" {
		ext = strings.TrimPrefix(old, ".")
	}
	return strings.TrimSuffix(path, old) + suffix + "." + ext
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// SanitizeFilename replaces characters that are invalid in filenames
func SanitizeFilename(filename string) string {
	result := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, filename)
	return strings.Trim(result, " .")
}
