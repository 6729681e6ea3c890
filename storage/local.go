package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalClient implements local file system storage
type LocalClient struct {
	basePath string
}

// NewLocalClient creates a new local storage client
func NewLocalClient(basePath string) (StorageInterface, error) {
	if basePath == "" {
		basePath = "./uploads"
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %v", err)
	}

	return &LocalClient{basePath: basePath}, nil
}

// UploadStream saves data from a stream to the local file system
func (lc *LocalClient) UploadStream(key string, reader io.Reader, size int64) error {
	fullPath := filepath.Join(lc.basePath, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	_, err = io.Copy(file, reader)
	return err
}

// DownloadStream returns a reader for the file
func (lc *LocalClient) DownloadStream(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(lc.basePath, key))
}

// Delete removes a file from the local file system
func (lc *LocalClient) Delete(key string) error {
	err := os.Remove(filepath.Join(lc.basePath, key))
	if os.IsNotExist(err) {
		return nil // already gone, consider it deleted
	}
	return err
}

// Exists checks whether the file is present
func (lc *LocalClient) Exists(key string) (bool, error) {
	_, err := os.Stat(filepath.Join(lc.basePath, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetSize returns the file size in bytes
func (lc *LocalClient) GetSize(key string) (int64, error) {
	info, err := os.Stat(filepath.Join(lc.basePath, key))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
