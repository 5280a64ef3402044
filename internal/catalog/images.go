package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrImageNotFound = errors.New("image not found")

// ImageStore maps catalog image references to files on disk.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Resolve returns the path of the image file for ref. Only the base name of
// ref is used so references cannot escape the images directory.
func (s *ImageStore) Resolve(ref string) (string, error) {
	if s == nil || ref == "" {
		return "", ErrImageNotFound
	}
	p := filepath.Join(s.dir, filepath.Base(ref))
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
		}
		return "", fmt.Errorf("stat image %s: %w", ref, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
	}
	return p, nil
}
