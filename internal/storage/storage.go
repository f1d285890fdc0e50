package storage

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ObjectStorage stores uploaded binary objects (avatars, project covers) and
// returns a URL path they can be served from.
type ObjectStorage interface {
	Save(name string, contentType string, r io.Reader) (string, error)
	Delete(urlPath string) error
}

// DiskStorage writes objects under a local directory, served at /uploads/.
type DiskStorage struct {
	dir string
}

func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir %s: %w", dir, err)
	}
	return &DiskStorage{dir: dir}, nil
}

// Dir returns the directory objects are written to.
func (s *DiskStorage) Dir() string {
	return s.dir
}

// Save writes the object under a random file name derived from the content
// type and returns its URL path.
func (s *DiskStorage) Save(name string, contentType string, r io.Reader) (string, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}

	fileName := uuid.New().String() + ext
	fullPath := filepath.Join(s.dir, fileName)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("creating file %s: %w", fullPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("writing file %s: %w", fullPath, err)
	}

	return "/uploads/" + fileName, nil
}

// Delete removes an object previously returned by Save. Unknown paths are
// rejected so a crafted URL cannot reach outside the storage directory.
func (s *DiskStorage) Delete(urlPath string) error {
	fileName := strings.TrimPrefix(urlPath, "/uploads/")
	if fileName == "" || strings.Contains(fileName, "/") || strings.Contains(fileName, "..") {
		return fmt.Errorf("invalid storage path: %s", urlPath)
	}
	return os.Remove(filepath.Join(s.dir, fileName))
}
