package services

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors returned by the service layer. Controllers map these onto
// HTTP statuses with errors.Is.
var (
	ErrNotFound               = errors.New("resource not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrForbidden              = errors.New("access forbidden")
	ErrInsufficientPermission = errors.New("insufficient permissions")
	ErrAuthRequired           = errors.New("authentication required")
	ErrCannotRemoveOriginal   = errors.New("cannot grant or revoke access for the original owner or uploader")
	ErrDuplicateFolder        = errors.New("folder with this name already exists in the same location")
	ErrShareLinkNotFound      = errors.New("share link not found")
	ErrShareLinkExpired       = errors.New("share link has expired")
	ErrInvalidShareTarget     = errors.New("share link must reference exactly one file or folder")
	ErrBlockedFileType        = errors.New("file type is not allowed")
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrUserExists             = errors.New("username or email is already taken")
	ErrNoThumbnail            = errors.New("file has no thumbnail")
)

// isNoDocuments reports whether err is the store's not-found condition.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
