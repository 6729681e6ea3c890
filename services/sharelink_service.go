package services

import (
	"context"
	"io"
	"time"

	"capidrive/models"
	"capidrive/storage"
	"capidrive/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareLinkService issues and resolves capability links. A link points at
// exactly one file or folder and admits either anyone holding the token or
// one named user. Token lookup is exact-match; an inactive link resolves the
// same way as a token that never existed, so a revoked token leaks nothing.
type ShareLinkService struct {
	links   ShareLinkStore
	files   FileStore
	folders FolderStore
	users   UserStore
	access  AccessStore
	perms   *PermissionService
	blobs   storage.StorageInterface
}

func NewShareLinkService(links ShareLinkStore, files FileStore, folders FolderStore, users UserStore, access AccessStore, perms *PermissionService, blobs storage.StorageInterface) *ShareLinkService {
	return &ShareLinkService{
		links:   links,
		files:   files,
		folders: folders,
		users:   users,
		access:  access,
		perms:   perms,
		blobs:   blobs,
	}
}

// Create mints a link over one target. The actor needs edit on the target
// regardless of the permission the link confers.
func (ss *ShareLinkService) Create(ctx context.Context, actor *models.User, req *models.ShareLinkCreateRequest) (*models.ShareLink, error) {
	if (req.FileID == "") == (req.FolderID == "") {
		return nil, ErrInvalidShareTarget
	}

	link := &models.ShareLink{
		AccessType: req.AccessType,
		Permission: req.Permission,
		CreatedBy:  actor.ID,
		CreatedAt:  time.Now(),
		ExpiresAt:  req.ExpiresAt,
		IsActive:   true,
	}

	if req.FileID != "" {
		fileID, err := primitive.ObjectIDFromHex(req.FileID)
		if err != nil {
			return nil, ErrNotFound
		}
		file, err := ss.files.GetByID(ctx, fileID)
		if err != nil {
			if isNoDocuments(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if err := ss.perms.RequireFilePermission(ctx, actor, file, models.PermissionEdit); err != nil {
			return nil, err
		}
		link.FileID = &file.ID
	} else {
		folderID, err := primitive.ObjectIDFromHex(req.FolderID)
		if err != nil {
			return nil, ErrNotFound
		}
		folder, err := ss.folders.GetByID(ctx, folderID)
		if err != nil {
			if isNoDocuments(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if err := ss.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionEdit); err != nil {
			return nil, err
		}
		link.FolderID = &folder.ID
	}

	if req.AccessType == models.AccessTypeSpecificUser {
		if req.SpecificUser == "" {
			return nil, ErrUserNotFound
		}
		target, err := ss.users.GetByUsername(ctx, req.SpecificUser)
		if err != nil {
			if isNoDocuments(err) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		link.SpecificUserID = &target.ID
	}

	token, err := utils.GenerateShareToken()
	if err != nil {
		return nil, err
	}
	link.Token = token

	if err := ss.links.Insert(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// List returns the links the actor has created, active and revoked alike.
func (ss *ShareLinkService) List(ctx context.Context, actor *models.User) ([]models.ShareLink, error) {
	return ss.links.ListByCreator(ctx, actor.ID)
}

// Revoke deactivates a link. Only its creator may revoke it. Grants already
// promoted from the link stay in place.
func (ss *ShareLinkService) Revoke(ctx context.Context, actor *models.User, linkID primitive.ObjectID) error {
	link, err := ss.links.GetByID(ctx, linkID)
	if err != nil {
		if isNoDocuments(err) {
			return ErrShareLinkNotFound
		}
		return err
	}
	if link.CreatedBy != actor.ID {
		return ErrForbidden
	}
	return ss.links.Deactivate(ctx, link.ID)
}

// resolve validates a token against the requester: unknown and inactive
// tokens both come back ErrShareLinkNotFound, expired ones
// ErrShareLinkExpired, and specific-user links reject anonymous requesters
// with ErrAuthRequired and everyone but the named user with ErrForbidden.
func (ss *ShareLinkService) resolve(ctx context.Context, token string, requester *models.User) (*models.ShareLink, error) {
	link, err := ss.links.GetByToken(ctx, token)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrShareLinkNotFound
		}
		return nil, err
	}
	if !link.IsActive {
		return nil, ErrShareLinkNotFound
	}
	if link.Expired(time.Now()) {
		return nil, ErrShareLinkExpired
	}
	if link.AccessType == models.AccessTypeSpecificUser {
		if requester == nil {
			return nil, ErrAuthRequired
		}
		if link.SpecificUserID == nil || *link.SpecificUserID != requester.ID {
			return nil, ErrForbidden
		}
	}
	return link, nil
}

// Access resolves a token into a view of its target. An authenticated visitor
// on an anyone link gets promoted: the link's permission is written as a
// durable grant on the target, so their access survives later revocation of
// the link. Owners and uploaders are not promoted; they already hold edit.
func (ss *ShareLinkService) Access(ctx context.Context, token string, requester *models.User) (*models.ShareLinkView, error) {
	link, err := ss.resolve(ctx, token, requester)
	if err != nil {
		return nil, err
	}

	view := &models.ShareLinkView{
		AccessType: link.AccessType,
		Permission: link.Permission,
	}

	if link.FileID != nil {
		file, err := ss.files.GetByID(ctx, *link.FileID)
		if err != nil {
			if isNoDocuments(err) {
				return nil, ErrShareLinkNotFound
			}
			return nil, err
		}
		if requester != nil && link.AccessType == models.AccessTypeAnyone {
			ss.promoteFileGrant(ctx, link, file, requester)
		}
		file.HasThumbnail = file.ThumbnailKey != ""
		view.File = file
		return view, nil
	}

	folder, err := ss.folders.GetByID(ctx, *link.FolderID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrShareLinkNotFound
		}
		return nil, err
	}
	if requester != nil && link.AccessType == models.AccessTypeAnyone {
		ss.promoteFolderGrant(ctx, link, folder, requester)
	}

	subfolders, err := ss.folders.Children(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	files, err := ss.files.InFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	view.Folder = folder
	view.Contents = &models.FolderContents{
		Folder:     folder,
		Subfolders: subfolders,
		Files:      decorateThumbnails(files),
	}
	return view, nil
}

// Browse lists a folder below a folder link's root so a link holder can
// navigate the subtree one level at a time, passing the same token at each
// hop. File links have nothing to browse. No promotion happens here.
func (ss *ShareLinkService) Browse(ctx context.Context, token string, requester *models.User, folderID primitive.ObjectID) (*models.FolderContents, error) {
	link, err := ss.resolve(ctx, token, requester)
	if err != nil {
		return nil, err
	}
	if link.FolderID == nil {
		return nil, ErrForbidden
	}

	folder, err := ss.folders.GetByID(ctx, folderID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	inside, err := ss.folderInSubtree(ctx, &folder.ID, *link.FolderID)
	if err != nil {
		return nil, err
	}
	if !inside {
		return nil, ErrForbidden
	}

	subfolders, err := ss.folders.Children(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	files, err := ss.files.InFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	return &models.FolderContents{
		Folder:     folder,
		Subfolders: subfolders,
		Files:      decorateThumbnails(files),
	}, nil
}

func (ss *ShareLinkService) promoteFileGrant(ctx context.Context, link *models.ShareLink, file *models.FileTransfer, requester *models.User) {
	if requester.ID == file.OwnerID || requester.ID == file.UploaderID {
		return
	}
	_, err := ss.access.UpsertFileAccess(ctx, &models.FileAccess{
		FileID:     file.ID,
		GrantedTo:  requester.ID,
		GrantedBy:  &link.CreatedBy,
		Permission: link.Permission,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"token_id": link.ID.Hex(),
			"user_id":  requester.ID.Hex(),
		}).Warn("share link: failed to promote file grant")
	}
}

func (ss *ShareLinkService) promoteFolderGrant(ctx context.Context, link *models.ShareLink, folder *models.Folder, requester *models.User) {
	if requester.ID == folder.OwnerID {
		return
	}
	_, err := ss.access.UpsertFolderAccess(ctx, &models.FolderAccess{
		FolderID:   folder.ID,
		GrantedTo:  requester.ID,
		GrantedBy:  &link.CreatedBy,
		Permission: link.Permission,
		Propagate:  false,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"token_id": link.ID.Hex(),
			"user_id":  requester.ID.Hex(),
		}).Warn("share link: failed to promote folder grant")
	}
}

// Download streams a file through a link. For file links the file must be
// the link's target; for folder links it must live somewhere inside the
// linked subtree, verified by walking the file's folder chain up to the
// link's folder. No promotion happens here.
func (ss *ShareLinkService) Download(ctx context.Context, token string, requester *models.User, fileID primitive.ObjectID) (*models.FileTransfer, io.ReadCloser, error) {
	file, err := ss.fileThroughLink(ctx, token, requester, fileID)
	if err != nil {
		return nil, nil, err
	}
	blob, err := ss.blobs.DownloadStream(file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return file, blob, nil
}

// Thumbnail streams a file's thumbnail through a link under the same scoping
// rules as Download.
func (ss *ShareLinkService) Thumbnail(ctx context.Context, token string, requester *models.User, fileID primitive.ObjectID) (*models.FileTransfer, io.ReadCloser, error) {
	file, err := ss.fileThroughLink(ctx, token, requester, fileID)
	if err != nil {
		return nil, nil, err
	}
	if file.ThumbnailKey == "" {
		return nil, nil, ErrNoThumbnail
	}
	blob, err := ss.blobs.DownloadStream(file.ThumbnailKey)
	if err != nil {
		return nil, nil, err
	}
	return file, blob, nil
}

func (ss *ShareLinkService) fileThroughLink(ctx context.Context, token string, requester *models.User, fileID primitive.ObjectID) (*models.FileTransfer, error) {
	link, err := ss.resolve(ctx, token, requester)
	if err != nil {
		return nil, err
	}

	file, err := ss.files.GetByID(ctx, fileID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if link.FileID != nil {
		if *link.FileID != file.ID {
			return nil, ErrForbidden
		}
		file.HasThumbnail = file.ThumbnailKey != ""
		return file, nil
	}

	inside, err := ss.folderInSubtree(ctx, file.FolderID, *link.FolderID)
	if err != nil {
		return nil, err
	}
	if !inside {
		return nil, ErrForbidden
	}
	file.HasThumbnail = file.ThumbnailKey != ""
	return file, nil
}

// folderInSubtree walks the parent chain from start toward the root looking
// for ancestor. A start equal to ancestor counts as inside.
func (ss *ShareLinkService) folderInSubtree(ctx context.Context, start *primitive.ObjectID, ancestor primitive.ObjectID) (bool, error) {
	current := start
	for current != nil {
		if *current == ancestor {
			return true, nil
		}
		folder, err := ss.folders.GetByID(ctx, *current)
		if err != nil {
			if isNoDocuments(err) {
				return false, nil
			}
			return false, err
		}
		current = folder.ParentID
	}
	return false, nil
}
