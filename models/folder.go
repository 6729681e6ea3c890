package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder is a node in a user's drive tree. Owner is the account whose drive
// the folder lives in; Uploader is whoever physically created it, which can
// be a collaborator acting inside a shared parent. Parent is nil for
// root-level folders. (Name, OwnerID, ParentID) is unique.
type Folder struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name" validate:"required"`
	OwnerID    primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	UploaderID primitive.ObjectID  `bson:"uploader_id" json:"uploader_id"`
	ParentID   *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}

type FolderCreateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=255,folder_name"`
	ParentID string `json:"parent_id"`
}

// FolderContents is one level of a folder listing.
type FolderContents struct {
	Folder     *Folder        `json:"folder,omitempty"`
	Subfolders []Folder       `json:"subfolders"`
	Files      []FileTransfer `json:"files"`
}
