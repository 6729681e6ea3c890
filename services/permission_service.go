package services

import (
	"context"
	"time"

	"capidrive/models"
)

// PermissionService computes the effective permission a user holds over a
// file or folder. Precedence, highest first: anonymous gets none; a file's
// owner or uploader gets edit; a folder's owner gets edit; an unexpired
// direct grant applies; for files only, an unexpired grant on the immediate
// parent folder applies. Files never walk further than their immediate
// parent: grants placed higher up the tree reach descendants through
// propagation at grant time and inheritance at creation time, not through a
// live chain walk.
type PermissionService struct {
	access AccessStore
}

func NewPermissionService(access AccessStore) *PermissionService {
	return &PermissionService{access: access}
}

// FilePermission returns the effective permission of user over file.
// A nil user is anonymous.
func (ps *PermissionService) FilePermission(ctx context.Context, user *models.User, file *models.FileTransfer) (models.Permission, error) {
	if user == nil {
		return models.PermissionNone, nil
	}
	if user.ID == file.OwnerID || user.ID == file.UploaderID {
		return models.PermissionEdit, nil
	}

	now := time.Now()

	access, err := ps.access.GetFileAccess(ctx, file.ID, user.ID)
	if err != nil && !isNoDocuments(err) {
		return models.PermissionNone, err
	}
	if access != nil && !access.Expired(now) {
		return access.Permission, nil
	}

	if file.FolderID != nil {
		folderAccess, err := ps.access.GetFolderAccess(ctx, *file.FolderID, user.ID)
		if err != nil && !isNoDocuments(err) {
			return models.PermissionNone, err
		}
		if folderAccess != nil && !folderAccess.Expired(now) {
			return folderAccess.Permission, nil
		}
	}

	return models.PermissionNone, nil
}

// FolderPermission returns the effective permission of user over folder.
// A nil user is anonymous.
func (ps *PermissionService) FolderPermission(ctx context.Context, user *models.User, folder *models.Folder) (models.Permission, error) {
	if user == nil {
		return models.PermissionNone, nil
	}
	if user.ID == folder.OwnerID {
		return models.PermissionEdit, nil
	}

	access, err := ps.access.GetFolderAccess(ctx, folder.ID, user.ID)
	if err != nil && !isNoDocuments(err) {
		return models.PermissionNone, err
	}
	if access != nil && !access.Expired(time.Now()) {
		return access.Permission, nil
	}

	return models.PermissionNone, nil
}

// RequireFilePermission fails with ErrInsufficientPermission when user does
// not hold the required level on file.
func (ps *PermissionService) RequireFilePermission(ctx context.Context, user *models.User, file *models.FileTransfer, required models.Permission) error {
	perm, err := ps.FilePermission(ctx, user, file)
	if err != nil {
		return err
	}
	if !perm.AtLeast(required) {
		return ErrInsufficientPermission
	}
	return nil
}

// RequireFolderPermission fails with ErrInsufficientPermission when user does
// not hold the required level on folder.
func (ps *PermissionService) RequireFolderPermission(ctx context.Context, user *models.User, folder *models.Folder, required models.Permission) error {
	perm, err := ps.FolderPermission(ctx, user, folder)
	if err != nil {
		return err
	}
	if !perm.AtLeast(required) {
		return ErrInsufficientPermission
	}
	return nil
}
