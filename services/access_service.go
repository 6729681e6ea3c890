package services

import (
	"context"
	"time"

	"capidrive/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessService manages per-file and per-folder grants. Folder grants with
// propagate=true fan out eagerly over every existing descendant at grant
// time; files uploaded later pick grants up through creation-time
// inheritance instead. Revocation never cascades: rows written by an earlier
// propagation survive until individually revoked.
type AccessService struct {
	folders  FolderStore
	files    FileStore
	access   AccessStore
	users    UserStore
	perms    *PermissionService
	notifier Notifier
}

func NewAccessService(folders FolderStore, files FileStore, access AccessStore, users UserStore, perms *PermissionService, notifier Notifier) *AccessService {
	return &AccessService{
		folders:  folders,
		files:    files,
		access:   access,
		users:    users,
		perms:    perms,
		notifier: notifier,
	}
}

// GrantFileAccess upserts a grant on one file. The actor must hold edit on
// the file; the grantee may not be its owner or uploader.
func (as *AccessService) GrantFileAccess(ctx context.Context, actor *models.User, fileID primitive.ObjectID, req *models.GrantAccessRequest) (*models.FileAccess, error) {
	file, err := as.files.GetByID(ctx, fileID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := as.perms.RequireFilePermission(ctx, actor, file, models.PermissionEdit); err != nil {
		return nil, err
	}

	grantee, err := as.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if grantee.ID == file.OwnerID || grantee.ID == file.UploaderID {
		return nil, ErrCannotRemoveOriginal
	}

	access, err := as.access.UpsertFileAccess(ctx, &models.FileAccess{
		FileID:     file.ID,
		GrantedTo:  grantee.ID,
		GrantedBy:  &actor.ID,
		Permission: req.Permission,
		ExpiresAt:  req.ExpiresAt,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return nil, err
	}

	as.notifier.AccessGranted(ctx, grantee.ID, actor, file.Filename)
	return access, nil
}

// RevokeFileAccess removes the grant for one grantee on one file. Not-found
// is reported distinctly from unauthorized.
func (as *AccessService) RevokeFileAccess(ctx context.Context, actor *models.User, fileID, granteeID primitive.ObjectID) error {
	file, err := as.files.GetByID(ctx, fileID)
	if err != nil {
		if isNoDocuments(err) {
			return ErrNotFound
		}
		return err
	}

	if err := as.perms.RequireFilePermission(ctx, actor, file, models.PermissionEdit); err != nil {
		return err
	}

	if granteeID == file.OwnerID || granteeID == file.UploaderID {
		return ErrCannotRemoveOriginal
	}

	err = as.access.DeleteFileAccess(ctx, fileID, granteeID)
	if isNoDocuments(err) {
		return ErrNotFound
	}
	return err
}

// ListFileAccess returns the grant rows on a file. Requires edit.
func (as *AccessService) ListFileAccess(ctx context.Context, actor *models.User, fileID primitive.ObjectID) ([]models.FileAccess, error) {
	file, err := as.files.GetByID(ctx, fileID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := as.perms.RequireFilePermission(ctx, actor, file, models.PermissionEdit); err != nil {
		return nil, err
	}

	return as.access.ListFileAccess(ctx, fileID)
}

// GrantFolderAccess upserts a grant on one folder. When propagate is true
// (the default) the grant is copied onto every existing descendant folder
// and file. The fan-out is eager and best-effort: a concurrent reader may
// observe a partially-propagated subtree, and a failed descendant upsert is
// logged and skipped rather than rolling back the rest.
func (as *AccessService) GrantFolderAccess(ctx context.Context, actor *models.User, folderID primitive.ObjectID, req *models.GrantAccessRequest) (*models.FolderAccess, error) {
	folder, err := as.folders.GetByID(ctx, folderID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := as.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionEdit); err != nil {
		return nil, err
	}

	grantee, err := as.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if grantee.ID == folder.OwnerID {
		return nil, ErrCannotRemoveOriginal
	}

	propagate := true
	if req.Propagate != nil {
		propagate = *req.Propagate
	}

	access, err := as.access.UpsertFolderAccess(ctx, &models.FolderAccess{
		FolderID:   folder.ID,
		GrantedTo:  grantee.ID,
		GrantedBy:  &actor.ID,
		Permission: req.Permission,
		Propagate:  propagate,
		ExpiresAt:  req.ExpiresAt,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if propagate {
		as.propagateFolderGrant(ctx, folder, access)
	}

	as.notifier.AccessGranted(ctx, grantee.ID, actor, folder.Name)
	return access, nil
}

// RevokeFolderAccess removes the grant for one grantee on one folder.
// Descendant rows written by earlier propagation are left in place.
func (as *AccessService) RevokeFolderAccess(ctx context.Context, actor *models.User, folderID, granteeID primitive.ObjectID) error {
	folder, err := as.folders.GetByID(ctx, folderID)
	if err != nil {
		if isNoDocuments(err) {
			return ErrNotFound
		}
		return err
	}

	if err := as.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionEdit); err != nil {
		return err
	}

	if granteeID == folder.OwnerID {
		return ErrCannotRemoveOriginal
	}

	err = as.access.DeleteFolderAccess(ctx, folderID, granteeID)
	if isNoDocuments(err) {
		return ErrNotFound
	}
	return err
}

// ListFolderAccess returns the grant rows on a folder. Requires edit.
func (as *AccessService) ListFolderAccess(ctx context.Context, actor *models.User, folderID primitive.ObjectID) ([]models.FolderAccess, error) {
	folder, err := as.folders.GetByID(ctx, folderID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := as.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionEdit); err != nil {
		return nil, err
	}

	return as.access.ListFolderAccess(ctx, folderID)
}

// propagateFolderGrant copies a folder grant onto every descendant folder
// and file. Depth strictly decreases on each recursion and the tree is
// acyclic by construction, so the walk terminates.
func (as *AccessService) propagateFolderGrant(ctx context.Context, folder *models.Folder, grant *models.FolderAccess) {
	files, err := as.files.InFolder(ctx, folder.ID)
	if err != nil {
		logrus.WithError(err).WithField("folder_id", folder.ID.Hex()).Warn("propagation: failed to list files")
	}
	for i := range files {
		file := &files[i]
		// never write a redundant self-grant for the original stakeholders
		if grant.GrantedTo == file.OwnerID || grant.GrantedTo == file.UploaderID {
			continue
		}
		_, err := as.access.UpsertFileAccess(ctx, &models.FileAccess{
			FileID:     file.ID,
			GrantedTo:  grant.GrantedTo,
			GrantedBy:  grant.GrantedBy,
			Permission: grant.Permission,
			ExpiresAt:  grant.ExpiresAt,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			logrus.WithError(err).WithField("file_id", file.ID.Hex()).Warn("propagation: failed to upsert file access")
		}
	}

	subfolders, err := as.folders.Children(ctx, folder.ID)
	if err != nil {
		logrus.WithError(err).WithField("folder_id", folder.ID.Hex()).Warn("propagation: failed to list subfolders")
		return
	}
	for i := range subfolders {
		subfolder := &subfolders[i]
		if grant.GrantedTo != subfolder.OwnerID {
			_, err := as.access.UpsertFolderAccess(ctx, &models.FolderAccess{
				FolderID:   subfolder.ID,
				GrantedTo:  grant.GrantedTo,
				GrantedBy:  grant.GrantedBy,
				Permission: grant.Permission,
				Propagate:  grant.Propagate,
				ExpiresAt:  grant.ExpiresAt,
				CreatedAt:  time.Now(),
			})
			if err != nil {
				logrus.WithError(err).WithField("folder_id", subfolder.ID.Hex()).Warn("propagation: failed to upsert folder access")
			}
		}
		as.propagateFolderGrant(ctx, subfolder, grant)
	}
}

// InheritFolderAccess copies every grant on parent onto child, keeping
// grantee, granter, permission and expiry. Called right after a folder is
// created inside a shared parent.
func (as *AccessService) InheritFolderAccess(ctx context.Context, parent, child *models.Folder) {
	grants, err := as.access.ListFolderAccess(ctx, parent.ID)
	if err != nil {
		logrus.WithError(err).WithField("folder_id", parent.ID.Hex()).Warn("inheritance: failed to list parent grants")
		return
	}
	for i := range grants {
		grant := &grants[i]
		if grant.GrantedTo == child.OwnerID {
			continue
		}
		_, err := as.access.UpsertFolderAccess(ctx, &models.FolderAccess{
			FolderID:   child.ID,
			GrantedTo:  grant.GrantedTo,
			GrantedBy:  grant.GrantedBy,
			Permission: grant.Permission,
			Propagate:  grant.Propagate,
			ExpiresAt:  grant.ExpiresAt,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			logrus.WithError(err).WithField("folder_id", child.ID.Hex()).Warn("inheritance: failed to upsert folder access")
		}
	}
}

// InheritFileAccess copies every grant on folder onto a file newly uploaded
// into it.
func (as *AccessService) InheritFileAccess(ctx context.Context, folder *models.Folder, file *models.FileTransfer) {
	grants, err := as.access.ListFolderAccess(ctx, folder.ID)
	if err != nil {
		logrus.WithError(err).WithField("folder_id", folder.ID.Hex()).Warn("inheritance: failed to list folder grants")
		return
	}
	for i := range grants {
		grant := &grants[i]
		if grant.GrantedTo == file.OwnerID || grant.GrantedTo == file.UploaderID {
			continue
		}
		_, err := as.access.UpsertFileAccess(ctx, &models.FileAccess{
			FileID:     file.ID,
			GrantedTo:  grant.GrantedTo,
			GrantedBy:  grant.GrantedBy,
			Permission: grant.Permission,
			ExpiresAt:  grant.ExpiresAt,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			logrus.WithError(err).WithField("file_id", file.ID.Hex()).Warn("inheritance: failed to upsert file access")
		}
	}
}
