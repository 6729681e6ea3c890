package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessType says who a share link admits.
type AccessType string

const (
	AccessTypeAnyone       AccessType = "anyone"
	AccessTypeSpecificUser AccessType = "specific_user"
)

func (t AccessType) Valid() bool {
	switch t {
	case AccessTypeAnyone, AccessTypeSpecificUser:
		return true
	}
	return false
}

// ShareLink is a capability token over exactly one file or folder. Revocation
// flips IsActive instead of deleting the row so the audit trail survives.
type ShareLink struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Token          string              `bson:"token" json:"token"`
	FileID         *primitive.ObjectID `bson:"file_id,omitempty" json:"file_id,omitempty"`
	FolderID       *primitive.ObjectID `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	AccessType     AccessType          `bson:"access_type" json:"access_type"`
	Permission     Permission          `bson:"permission" json:"permission"`
	SpecificUserID *primitive.ObjectID `bson:"specific_user_id,omitempty" json:"specific_user_id,omitempty"`
	CreatedBy      primitive.ObjectID  `bson:"created_by" json:"created_by"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	ExpiresAt      *time.Time          `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	IsActive       bool                `bson:"is_active" json:"is_active"`
}

// Expired reports whether the link is past its expiry.
func (l *ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

type ShareLinkCreateRequest struct {
	FileID       string     `json:"file_id"`
	FolderID     string     `json:"folder_id"`
	AccessType   AccessType `json:"access_type" validate:"required,oneof=anyone specific_user"`
	Permission   Permission `json:"permission" validate:"required,oneof=read edit"`
	SpecificUser string     `json:"specific_user"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// ShareLinkView is what a visitor gets back from the public access endpoint.
// For folder targets Contents carries the immediate children so an anonymous
// browser can walk the tree one level per request.
type ShareLinkView struct {
	AccessType AccessType      `json:"access_type"`
	Permission Permission      `json:"permission"`
	File       *FileTransfer   `json:"file,omitempty"`
	Folder     *Folder         `json:"folder,omitempty"`
	Contents   *FolderContents `json:"contents,omitempty"`
}
