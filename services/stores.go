package services

import (
	"context"
	"time"

	"capidrive/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces consumed by the service layer. The mongo implementations
// live in the database package; tests substitute in-memory fakes. Absence is
// signalled with mongo.ErrNoDocuments across all implementations.

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type FolderStore interface {
	Insert(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error)
	Children(ctx context.Context, parentID primitive.ObjectID) ([]models.Folder, error)
	Roots(ctx context.Context, ownerID primitive.ObjectID) ([]models.Folder, error)
	SiblingExists(ctx context.Context, name string, ownerID primitive.ObjectID, parentID *primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type FileStore interface {
	Insert(ctx context.Context, file *models.FileTransfer) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.FileTransfer, error)
	InFolder(ctx context.Context, folderID primitive.ObjectID) ([]models.FileTransfer, error)
	InRoot(ctx context.Context, ownerID primitive.ObjectID) ([]models.FileTransfer, error)
	ForUser(ctx context.Context, userID primitive.ObjectID) ([]models.FileTransfer, error)
	Update(ctx context.Context, file *models.FileTransfer) error
	MarkViewed(ctx context.Context, ids []primitive.ObjectID) error
	Expired(ctx context.Context, cutoff time.Time) ([]models.FileTransfer, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AccessStore interface {
	UpsertFileAccess(ctx context.Context, access *models.FileAccess) (*models.FileAccess, error)
	UpsertFolderAccess(ctx context.Context, access *models.FolderAccess) (*models.FolderAccess, error)
	GetFileAccess(ctx context.Context, fileID, userID primitive.ObjectID) (*models.FileAccess, error)
	GetFolderAccess(ctx context.Context, folderID, userID primitive.ObjectID) (*models.FolderAccess, error)
	ListFileAccess(ctx context.Context, fileID primitive.ObjectID) ([]models.FileAccess, error)
	ListFolderAccess(ctx context.Context, folderID primitive.ObjectID) ([]models.FolderAccess, error)
	DeleteFileAccess(ctx context.Context, fileID, userID primitive.ObjectID) error
	DeleteFolderAccess(ctx context.Context, folderID, userID primitive.ObjectID) error
	DeleteAllFileAccess(ctx context.Context, fileID primitive.ObjectID) error
	DeleteAllFolderAccess(ctx context.Context, folderID primitive.ObjectID) error
}

type ShareLinkStore interface {
	Insert(ctx context.Context, link *models.ShareLink) error
	GetByToken(ctx context.Context, token string) (*models.ShareLink, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ShareLink, error)
	ListByCreator(ctx context.Context, userID primitive.ObjectID) ([]models.ShareLink, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type NotificationStore interface {
	Insert(ctx context.Context, notification *models.Notification) error
	ListForRecipient(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error
}
