// utils/file.go
package utils

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
)

// LocalStore keeps photos on disk when no bucket is configured. Files are
// served by the static handler mounted at URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: dir, URLPrefix: urlPrefix}, nil
}

func (l *LocalStore) Save(_ context.Context, fileHeader *multipart.FileHeader, key string) (string, error) {
	if err := SaveFile(fileHeader, filepath.Join(l.Dir, filepath.FromSlash(key))); err != nil {
		return "", err
	}
	return path.Join(l.URLPrefix, key), nil
}

// SaveFile saves the uploaded file to the given destination path
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}
