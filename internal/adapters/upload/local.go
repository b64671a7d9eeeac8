// Package upload stores user-submitted images (stable photos) on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Allowed image content types for stable photos.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// MaxImageSize is the largest accepted upload in bytes.
const MaxImageSize = 5 << 20 // 5 MB

// Domain errors.
var (
	ErrTooLarge        = errors.New("image must be under 5 MB")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// LocalStore saves uploads under a base directory and serves them back by
// URL path. Filenames are random so user input never reaches the filesystem.
type LocalStore struct {
	baseDir   string
	urlPrefix string
}

// NewLocalStore creates a LocalStore rooted at baseDir, returning URLs
// under urlPrefix (e.g. "/uploads").
func NewLocalStore(baseDir, urlPrefix string) *LocalStore {
	return &LocalStore{baseDir: baseDir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// SaveImage writes the image to disk and returns the URL path to serve it.
// PRE: contentType is the declared MIME type; size is the declared length
// POST: file created under baseDir with a uuid name and type extension
func (s *LocalStore) SaveImage(src io.Reader, contentType string, size int64) (string, error) {
	if size > MaxImageSize {
		return "", ErrTooLarge
	}
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.New().String() + ext
	fullPath := filepath.Join(s.baseDir, name)
	if err := os.MkdirAll(s.baseDir, 0o750); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create: %w", err)
	}
	defer dst.Close()

	// LimitReader guards against a lying Content-Length.
	if _, err := io.Copy(dst, io.LimitReader(src, MaxImageSize+1)); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write: %w", err)
	}

	return s.urlPrefix + "/" + name, nil
}

// Remove deletes a previously stored image given its URL path. Unknown
// paths are ignored.
func (s *LocalStore) Remove(urlPath string) error {
	name := strings.TrimPrefix(urlPath, s.urlPrefix+"/")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Dir returns the directory served for static access to uploads.
func (s *LocalStore) Dir() string {
	return s.baseDir
}
