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

// UploadInput carries everything the upload path needs besides the actor.
// Size may be zero when the transport does not know it up front; the stored
// size is then read back from the blob backend after the write.
type UploadInput struct {
	Filename    string
	Description string
	FolderID    string
	Size        int64
	Reader      io.Reader
}

// FileService handles the file lifecycle: upload with scanning and
// inheritance, metadata edits, downloads, and deletion. Storage keys are
// derived from the owning user's username, so a collaborator upload into a
// shared folder lands under the folder owner's prefix.
type FileService struct {
	files       FileStore
	folders     FolderStore
	users       UserStore
	access      AccessStore
	perms       *PermissionService
	accessS     *AccessService
	blobs       storage.StorageInterface
	scanner     MalwareScanner
	thumbnailer ThumbnailGenerator
	notifier    Notifier
	expiry      time.Duration
}

func NewFileService(files FileStore, folders FolderStore, users UserStore, access AccessStore, perms *PermissionService, accessService *AccessService, blobs storage.StorageInterface, scanner MalwareScanner, thumbnailer ThumbnailGenerator, notifier Notifier, defaultExpiry time.Duration) *FileService {
	return &FileService{
		files:       files,
		folders:     folders,
		users:       users,
		access:      access,
		perms:       perms,
		accessS:     accessService,
		blobs:       blobs,
		scanner:     scanner,
		thumbnailer: thumbnailer,
		notifier:    notifier,
		expiry:      defaultExpiry,
	}
}

// Upload stores a new file. Uploading into a folder requires edit on it and
// records the folder's owner as the file's owner; the actor is always the
// uploader. The scanner runs before any bytes are written. New files inherit
// the destination folder's unexpired grants and notify the owner when
// someone else uploaded.
func (fs *FileService) Upload(ctx context.Context, actor *models.User, input *UploadInput) (*models.FileTransfer, error) {
	if err := fs.scanner.Scan(input.Filename); err != nil {
		return nil, err
	}

	var folder *models.Folder
	if input.FolderID != "" {
		folderID, err := primitive.ObjectIDFromHex(input.FolderID)
		if err != nil {
			return nil, ErrNotFound
		}
		folder, err = fs.folders.GetByID(ctx, folderID)
		if err != nil {
			if isNoDocuments(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if err := fs.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionEdit); err != nil {
			return nil, err
		}
	}

	ownerID := actor.ID
	ownerUsername := actor.Username
	var folderID *primitive.ObjectID
	if folder != nil {
		ownerID = folder.OwnerID
		folderID = &folder.ID
		if ownerID != actor.ID {
			owner, err := fs.users.GetByID(ctx, ownerID)
			if err != nil {
				if isNoDocuments(err) {
					return nil, ErrNotFound
				}
				return nil, err
			}
			ownerUsername = owner.Username
		}
	}

	filename := utils.SanitizeFilename(input.Filename)
	storageKey, err := utils.BuildStorageKey(ownerUsername, filename)
	if err != nil {
		return nil, err
	}

	if err := fs.blobs.UploadStream(storageKey, input.Reader, input.Size); err != nil {
		return nil, err
	}

	size := input.Size
	if size <= 0 {
		size, err = fs.blobs.GetSize(storageKey)
		if err != nil {
			logrus.WithError(err).WithField("key", storageKey).Warn("upload: failed to read back blob size")
			size = 0
		}
	}

	expiresAt := time.Now().Add(fs.expiry)
	file := &models.FileTransfer{
		UploaderID:  actor.ID,
		OwnerID:     ownerID,
		FolderID:    folderID,
		StorageKey:  storageKey,
		Filename:    filename,
		Size:        size,
		Description: input.Description,
		CreatedAt:   time.Now(),
		ExpiresAt:   &expiresAt,
	}

	if thumbKey, err := fs.thumbnailer.Generate(storageKey, filename); err != nil {
		logrus.WithError(err).WithField("key", storageKey).Warn("upload: thumbnail generation failed")
	} else {
		file.ThumbnailKey = thumbKey
	}

	if err := fs.files.Insert(ctx, file); err != nil {
		if delErr := fs.blobs.Delete(storageKey); delErr != nil {
			logrus.WithError(delErr).WithField("key", storageKey).Warn("upload: failed to remove orphaned blob")
		}
		return nil, err
	}

	if folder != nil {
		fs.accessS.InheritFileAccess(ctx, folder, file)
	}
	if ownerID != actor.ID {
		fs.notifier.FileReceived(ctx, file, actor, folder)
	}

	file.HasThumbnail = file.ThumbnailKey != ""
	return file, nil
}

// Get returns a file the actor can at least read.
func (fs *FileService) Get(ctx context.Context, actor *models.User, fileID primitive.ObjectID) (*models.FileTransfer, error) {
	file, err := fs.files.GetByID(ctx, fileID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := fs.perms.RequireFilePermission(ctx, actor, file, models.PermissionRead); err != nil {
		return nil, err
	}
	file.HasThumbnail = file.ThumbnailKey != ""
	return file, nil
}

// List returns every file the actor owns or uploaded.
func (fs *FileService) List(ctx context.Context, actor *models.User) ([]models.FileTransfer, error) {
	files, err := fs.files.ForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return decorateThumbnails(files), nil
}

// Download opens the blob for reading. When the owner downloads their own
// file it is flagged as downloaded and viewed, mirroring the receipt
// tracking of direct transfers.
func (fs *FileService) Download(ctx context.Context, actor *models.User, fileID primitive.ObjectID) (*models.FileTransfer, io.ReadCloser, error) {
	file, err := fs.Get(ctx, actor, fileID)
	if err != nil {
		return nil, nil, err
	}

	blob, err := fs.blobs.DownloadStream(file.StorageKey)
	if err != nil {
		return nil, nil, err
	}

	if actor != nil && actor.ID == file.OwnerID && (!file.IsDownloaded || !file.IsViewed) {
		file.IsDownloaded = true
		file.IsViewed = true
		if err := fs.files.Update(ctx, file); err != nil {
			logrus.WithError(err).WithField("file_id", file.ID.Hex()).Warn("download: failed to record receipt")
		}
	}

	return file, blob, nil
}

// Thumbnail opens the thumbnail blob, or ErrNoThumbnail when the file has
// none.
func (fs *FileService) Thumbnail(ctx context.Context, actor *models.User, fileID primitive.ObjectID) (*models.FileTransfer, io.ReadCloser, error) {
	file, err := fs.Get(ctx, actor, fileID)
	if err != nil {
		return nil, nil, err
	}
	if file.ThumbnailKey == "" {
		return nil, nil, ErrNoThumbnail
	}
	blob, err := fs.blobs.DownloadStream(file.ThumbnailKey)
	if err != nil {
		return nil, nil, err
	}
	return file, blob, nil
}

// Update renames or re-describes a file. Requires edit.
func (fs *FileService) Update(ctx context.Context, actor *models.User, fileID primitive.ObjectID, req *models.FileUpdateRequest) (*models.FileTransfer, error) {
	file, err := fs.files.GetByID(ctx, fileID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := fs.perms.RequireFilePermission(ctx, actor, file, models.PermissionEdit); err != nil {
		return nil, err
	}

	if req.Filename != "" {
		file.Filename = utils.SanitizeFilename(req.Filename)
	}
	if req.Description != "" {
		file.Description = req.Description
	}

	if err := fs.files.Update(ctx, file); err != nil {
		return nil, err
	}
	file.HasThumbnail = file.ThumbnailKey != ""
	return file, nil
}

// Move relocates a file into another folder, or to the drive root when the
// request carries no folder. Requires edit on the file and, for a folder
// destination, edit on that folder. Grants on the file itself travel with
// it; the destination folder's grants do not retroactively attach.
func (fs *FileService) Move(ctx context.Context, actor *models.User, fileID primitive.ObjectID, req *models.FileMoveRequest) (*models.FileTransfer, error) {
	file, err := fs.files.GetByID(ctx, fileID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := fs.perms.RequireFilePermission(ctx, actor, file, models.PermissionEdit); err != nil {
		return nil, err
	}

	if req.FolderID == "" {
		file.FolderID = nil
	} else {
		folderID, err := primitive.ObjectIDFromHex(req.FolderID)
		if err != nil {
			return nil, ErrNotFound
		}
		folder, err := fs.folders.GetByID(ctx, folderID)
		if err != nil {
			if isNoDocuments(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if err := fs.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionEdit); err != nil {
			return nil, err
		}
		file.FolderID = &folder.ID
	}

	if err := fs.files.Update(ctx, file); err != nil {
		return nil, err
	}
	file.HasThumbnail = file.ThumbnailKey != ""
	return file, nil
}

// MarkViewed flags a file as seen by its owner.
func (fs *FileService) MarkViewed(ctx context.Context, actor *models.User, fileID primitive.ObjectID) error {
	file, err := fs.files.GetByID(ctx, fileID)
	if err != nil {
		if isNoDocuments(err) {
			return ErrNotFound
		}
		return err
	}
	if actor.ID != file.OwnerID {
		return ErrForbidden
	}
	if file.IsViewed {
		return nil
	}
	return fs.files.MarkViewed(ctx, []primitive.ObjectID{file.ID})
}

// CleanupExpired sweeps files past their expiry: blob, thumbnail, grants,
// record. Runs from a background job. Returns the number of files removed.
func (fs *FileService) CleanupExpired(ctx context.Context) (int, error) {
	expired, err := fs.files.Expired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := range expired {
		file := &expired[i]
		if err := fs.blobs.Delete(file.StorageKey); err != nil {
			logrus.WithError(err).WithField("key", file.StorageKey).Warn("cleanup: failed to remove blob")
		}
		if file.ThumbnailKey != "" {
			if err := fs.blobs.Delete(file.ThumbnailKey); err != nil {
				logrus.WithError(err).WithField("key", file.ThumbnailKey).Warn("cleanup: failed to remove thumbnail")
			}
		}
		if err := fs.access.DeleteAllFileAccess(ctx, file.ID); err != nil {
			logrus.WithError(err).WithField("file_id", file.ID.Hex()).Warn("cleanup: failed to remove grants")
		}
		if err := fs.files.Delete(ctx, file.ID); err != nil {
			logrus.WithError(err).WithField("file_id", file.ID.Hex()).Warn("cleanup: failed to remove record")
			continue
		}
		removed++
	}
	return removed, nil
}

// Delete removes a file's blob, thumbnail, grants, and record. Only the
// owner or uploader may delete; edit granted through a folder is not
// enough.
func (fs *FileService) Delete(ctx context.Context, actor *models.User, fileID primitive.ObjectID) error {
	file, err := fs.files.GetByID(ctx, fileID)
	if err != nil {
		if isNoDocuments(err) {
			return ErrNotFound
		}
		return err
	}
	if actor.ID != file.OwnerID && actor.ID != file.UploaderID {
		return ErrForbidden
	}

	if err := fs.blobs.Delete(file.StorageKey); err != nil {
		logrus.WithError(err).WithField("key", file.StorageKey).Warn("delete: failed to remove blob")
	}
	if file.ThumbnailKey != "" {
		if err := fs.blobs.Delete(file.ThumbnailKey); err != nil {
			logrus.WithError(err).WithField("key", file.ThumbnailKey).Warn("delete: failed to remove thumbnail")
		}
	}
	if err := fs.access.DeleteAllFileAccess(ctx, file.ID); err != nil {
		logrus.WithError(err).WithField("file_id", file.ID.Hex()).Warn("delete: failed to remove grants")
	}
	return fs.files.Delete(ctx, file.ID)
}
