package services

import (
	"archive/zip"
	"context"
	"io"
	"path"
	"time"

	"capidrive/models"
	"capidrive/storage"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FolderService maintains the folder tree: creation with ownership
// inheritance, listings, and the recursive subtree operations (delete,
// mark-viewed, zip export). Permission for a recursive operation is checked
// once at the root of the recursion.
type FolderService struct {
	folders FolderStore
	files   FileStore
	access  AccessStore
	perms   *PermissionService
	accessS *AccessService
	blobs   storage.StorageInterface
}

func NewFolderService(folders FolderStore, files FileStore, access AccessStore, perms *PermissionService, accessService *AccessService, blobs storage.StorageInterface) *FolderService {
	return &FolderService{
		folders: folders,
		files:   files,
		access:  access,
		perms:   perms,
		accessS: accessService,
		blobs:   blobs,
	}
}

// Create creates a folder. With a parent, the new folder belongs to the
// parent's owner and the actor is recorded as uploader; this is what lets a
// collaborator with edit on a shared folder add subfolders without becoming
// their owner. Without a parent the actor is both owner and uploader.
func (fs *FolderService) Create(ctx context.Context, actor *models.User, req *models.FolderCreateRequest) (*models.Folder, error) {
	var parent *models.Folder
	if req.ParentID != "" {
		parentID, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			return nil, ErrNotFound
		}
		parent, err = fs.folders.GetByID(ctx, parentID)
		if err != nil {
			if isNoDocuments(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if err := fs.perms.RequireFolderPermission(ctx, actor, parent, models.PermissionEdit); err != nil {
			return nil, err
		}
	}

	ownerID := actor.ID
	var parentID *primitive.ObjectID
	if parent != nil {
		ownerID = parent.OwnerID
		parentID = &parent.ID
	}

	taken, err := fs.folders.SiblingExists(ctx, req.Name, ownerID, parentID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateFolder
	}

	folder := &models.Folder{
		Name:       req.Name,
		OwnerID:    ownerID,
		UploaderID: actor.ID,
		ParentID:   parentID,
		CreatedAt:  time.Now(),
	}
	if err := fs.folders.Insert(ctx, folder); err != nil {
		// A concurrent create can slip past the sibling check and land on
		// the unique (name, owner, parent) index instead.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateFolder
		}
		return nil, err
	}

	if parent != nil {
		fs.accessS.InheritFolderAccess(ctx, parent, folder)
	}

	return folder, nil
}

// Get returns a folder the actor can at least read.
func (fs *FolderService) Get(ctx context.Context, actor *models.User, folderID primitive.ObjectID) (*models.Folder, error) {
	folder, err := fs.folders.GetByID(ctx, folderID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := fs.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionRead); err != nil {
		return nil, err
	}
	return folder, nil
}

// Contents returns one level of a folder's listing.
func (fs *FolderService) Contents(ctx context.Context, actor *models.User, folderID primitive.ObjectID) (*models.FolderContents, error) {
	folder, err := fs.Get(ctx, actor, folderID)
	if err != nil {
		return nil, err
	}

	subfolders, err := fs.folders.Children(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	files, err := fs.files.InFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	return &models.FolderContents{
		Folder:     folder,
		Subfolders: subfolders,
		Files:      decorateThumbnails(files),
	}, nil
}

// RootContents returns the top level of the actor's own drive.
func (fs *FolderService) RootContents(ctx context.Context, actor *models.User) (*models.FolderContents, error) {
	folders, err := fs.folders.Roots(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	files, err := fs.files.InRoot(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &models.FolderContents{
		Subfolders: folders,
		Files:      decorateThumbnails(files),
	}, nil
}

// Delete removes a folder and everything under it: blobs first, then
// records, depth-first. Edit on the root authorizes the whole subtree; the
// walk is idempotent, so re-running it over a partially-deleted tree is
// safe. Missing blobs are logged and skipped.
func (fs *FolderService) Delete(ctx context.Context, actor *models.User, folderID primitive.ObjectID) error {
	folder, err := fs.folders.GetByID(ctx, folderID)
	if err != nil {
		if isNoDocuments(err) {
			return ErrNotFound
		}
		return err
	}

	if err := fs.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionEdit); err != nil {
		return err
	}

	return fs.deleteRecursive(ctx, folder)
}

func (fs *FolderService) deleteRecursive(ctx context.Context, folder *models.Folder) error {
	files, err := fs.files.InFolder(ctx, folder.ID)
	if err != nil {
		return err
	}
	for i := range files {
		file := &files[i]
		if err := fs.blobs.Delete(file.StorageKey); err != nil {
			logrus.WithError(err).WithField("key", file.StorageKey).Warn("delete: failed to remove blob")
		}
		if file.ThumbnailKey != "" {
			if err := fs.blobs.Delete(file.ThumbnailKey); err != nil {
				logrus.WithError(err).WithField("key", file.ThumbnailKey).Warn("delete: failed to remove thumbnail")
			}
		}
		if err := fs.access.DeleteAllFileAccess(ctx, file.ID); err != nil {
			logrus.WithError(err).WithField("file_id", file.ID.Hex()).Warn("delete: failed to remove file grants")
		}
		if err := fs.files.Delete(ctx, file.ID); err != nil {
			return err
		}
	}

	subfolders, err := fs.folders.Children(ctx, folder.ID)
	if err != nil {
		return err
	}
	for i := range subfolders {
		if err := fs.deleteRecursive(ctx, &subfolders[i]); err != nil {
			return err
		}
	}

	if err := fs.access.DeleteAllFolderAccess(ctx, folder.ID); err != nil {
		logrus.WithError(err).WithField("folder_id", folder.ID.Hex()).Warn("delete: failed to remove folder grants")
	}
	return fs.folders.Delete(ctx, folder.ID)
}

// MarkViewed flags every not-yet-viewed file in the subtree that the actor
// can access. Returns the number of files flagged.
func (fs *FolderService) MarkViewed(ctx context.Context, actor *models.User, folderID primitive.ObjectID) (int, error) {
	folder, err := fs.folders.GetByID(ctx, folderID)
	if err != nil {
		if isNoDocuments(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	if err := fs.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionRead); err != nil {
		return 0, err
	}

	var ids []primitive.ObjectID
	if err := fs.collectViewable(ctx, actor, folder, &ids); err != nil {
		return 0, err
	}

	if err := fs.files.MarkViewed(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (fs *FolderService) collectViewable(ctx context.Context, actor *models.User, folder *models.Folder, ids *[]primitive.ObjectID) error {
	files, err := fs.files.InFolder(ctx, folder.ID)
	if err != nil {
		return err
	}
	for i := range files {
		file := &files[i]
		if file.IsViewed {
			continue
		}
		perm, err := fs.perms.FilePermission(ctx, actor, file)
		if err != nil {
			return err
		}
		if perm.AtLeast(models.PermissionRead) {
			*ids = append(*ids, file.ID)
		}
	}

	subfolders, err := fs.folders.Children(ctx, folder.ID)
	if err != nil {
		return err
	}
	for i := range subfolders {
		if err := fs.collectViewable(ctx, actor, &subfolders[i], ids); err != nil {
			return err
		}
	}
	return nil
}

type zipEntry struct {
	storageKey  string
	archivePath string
}

// DownloadZip streams the subtree as a zip archive. The writer runs in its
// own goroutine coupled to the returned reader through a pipe, so peak
// memory stays bounded by the copy chunk size rather than the tree size.
// When the consumer closes the reader early the writer's next write fails
// and the goroutine terminates, releasing open blob handles. Files whose
// blobs vanished between indexing and writing are skipped.
func (fs *FolderService) DownloadZip(ctx context.Context, actor *models.User, folderID primitive.ObjectID) (io.ReadCloser, string, error) {
	folder, err := fs.folders.GetByID(ctx, folderID)
	if err != nil {
		if isNoDocuments(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	if err := fs.perms.RequireFolderPermission(ctx, actor, folder, models.PermissionRead); err != nil {
		return nil, "", err
	}

	var entries []zipEntry
	if err := fs.collectZipEntries(ctx, actor, folder, folder.Name, &entries); err != nil {
		return nil, "", err
	}

	pr, pw := io.Pipe()
	go func() {
		zw := zip.NewWriter(pw)
		for _, entry := range entries {
			blob, err := fs.blobs.DownloadStream(entry.storageKey)
			if err != nil {
				logrus.WithError(err).WithField("key", entry.storageKey).Warn("zip: skipping missing blob")
				continue
			}
			w, err := zw.Create(entry.archivePath)
			if err != nil {
				blob.Close()
				pw.CloseWithError(err)
				return
			}
			if _, err := io.Copy(w, blob); err != nil {
				blob.Close()
				pw.CloseWithError(err)
				return
			}
			blob.Close()
		}
		if err := zw.Close(); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()

	return pr, folder.Name + ".zip", nil
}

func (fs *FolderService) collectZipEntries(ctx context.Context, actor *models.User, folder *models.Folder, prefix string, entries *[]zipEntry) error {
	files, err := fs.files.InFolder(ctx, folder.ID)
	if err != nil {
		return err
	}
	for i := range files {
		file := &files[i]
		perm, err := fs.perms.FilePermission(ctx, actor, file)
		if err != nil {
			return err
		}
		if !perm.AtLeast(models.PermissionRead) {
			continue
		}
		*entries = append(*entries, zipEntry{
			storageKey:  file.StorageKey,
			archivePath: path.Join(prefix, file.Filename),
		})
	}

	subfolders, err := fs.folders.Children(ctx, folder.ID)
	if err != nil {
		return err
	}
	for i := range subfolders {
		subfolder := &subfolders[i]
		if err := fs.collectZipEntries(ctx, actor, subfolder, path.Join(prefix, subfolder.Name), entries); err != nil {
			return err
		}
	}
	return nil
}

func decorateThumbnails(files []models.FileTransfer) []models.FileTransfer {
	for i := range files {
		files[i].HasThumbnail = files[i].ThumbnailKey != ""
	}
	return files
}
