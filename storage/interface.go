package storage

import "io"

// StorageInterface is the blob backend the file services write through. Keys
// follow the <owner_username>/<prefix>_<filename> convention; backends treat
// them as opaque.
type StorageInterface interface {
	UploadStream(key string, reader io.Reader, size int64) error
	DownloadStream(key string) (io.ReadCloser, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	GetSize(key string) (int64, error)
}

// StorageError represents storage-specific errors
type StorageError struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Key      string `json:"key,omitempty"`
}

func (e *StorageError) Error() string {
	return e.Message
}

// NewStorageError creates a new storage error
func NewStorageError(provider, code, message, key string) *StorageError {
	return &StorageError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Key:      key,
	}
}
