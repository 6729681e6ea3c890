package services

import (
	"path/filepath"
	"strings"
)

// MalwareScanner is invoked synchronously during upload, before a record is
// created. Scan returns ErrBlockedFileType when the upload must be rejected.
type MalwareScanner interface {
	Scan(filename string) error
}

// ExtensionScanner rejects uploads by extension denylist. Heavier scanning
// backends can replace it behind the same interface.
type ExtensionScanner struct {
	blocked map[string]struct{}
}

func NewExtensionScanner(blockedExtensions []string) *ExtensionScanner {
	blocked := make(map[string]struct{}, len(blockedExtensions))
	for _, ext := range blockedExtensions {
		blocked[strings.ToLower(ext)] = struct{}{}
	}
	return &ExtensionScanner{blocked: blocked}
}

func (s *ExtensionScanner) Scan(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, found := s.blocked[ext]; found {
		return ErrBlockedFileType
	}
	return nil
}
