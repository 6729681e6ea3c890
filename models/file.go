package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileTransfer is a stored file. Owner/Uploader follow the same split as
// Folder: a collaborator uploading into a shared folder records the folder's
// owner as OwnerID and themselves as UploaderID. FolderID nil means the root
// of the owner's drive.
type FileTransfer struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UploaderID   primitive.ObjectID  `bson:"uploader_id" json:"uploader_id"`
	OwnerID      primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	FolderID     *primitive.ObjectID `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	StorageKey   string              `bson:"storage_key" json:"-"`
	Filename     string              `bson:"filename" json:"filename" validate:"required"`
	Size         int64               `bson:"size" json:"size"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	ExpiresAt    *time.Time          `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	IsDownloaded bool                `bson:"is_downloaded" json:"is_downloaded"`
	IsViewed     bool                `bson:"is_viewed" json:"is_viewed"`
	ThumbnailKey string              `bson:"thumbnail_key,omitempty" json:"-"`
	HasThumbnail bool                `bson:"-" json:"has_thumbnail"`
}

type FileUpdateRequest struct {
	Filename    string `json:"filename" validate:"omitempty,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type FileMoveRequest struct {
	FolderID string `json:"folder_id"`
}
