package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
)

// BlobStore persists uploaded image files outside the document store.
type BlobStore interface {
	Save(file *multipart.FileHeader, name string) error
	Delete(name string) error
}

// LocalStorage keeps blobs as plain files under a base directory. The
// directory is served statically by the HTTP layer.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save writes the uploaded file under the given name.
func (s *LocalStorage) Save(file *multipart.FileHeader, name string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.basePath, filepath.Base(name)))
	if err != nil {
		return fmt.Errorf("creating blob file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return fmt.Errorf("writing blob file: %w", err)
	}
	return nil
}

// Delete removes the named blob. A blob that is already gone is not an
// error, so cleanup paths can run unconditionally.
func (s *LocalStorage) Delete(name string) error {
	err := os.Remove(filepath.Join(s.basePath, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
