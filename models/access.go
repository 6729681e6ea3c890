package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission is the effective access level a user holds over a file or
// folder. None is never persisted; grant rows only carry read or edit.
type Permission string

const (
	PermissionNone Permission = "none"
	PermissionRead Permission = "read"
	PermissionEdit Permission = "edit"
)

// Valid reports whether p is a grantable permission level.
func (p Permission) Valid() bool {
	switch p {
	case PermissionRead, PermissionEdit:
		return true
	}
	return false
}

// AtLeast reports whether p satisfies the required level.
func (p Permission) AtLeast(required Permission) bool {
	switch required {
	case PermissionNone:
		return true
	case PermissionRead:
		return p == PermissionRead || p == PermissionEdit
	case PermissionEdit:
		return p == PermissionEdit
	}
	return false
}

// FileAccess grants one user a permission on one file. Unique per
// (FileID, GrantedTo); re-granting updates the row in place.
type FileAccess struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FileID     primitive.ObjectID  `bson:"file_id" json:"file_id"`
	GrantedTo  primitive.ObjectID  `bson:"granted_to" json:"granted_to"`
	GrantedBy  *primitive.ObjectID `bson:"granted_by,omitempty" json:"granted_by,omitempty"`
	Permission Permission          `bson:"permission" json:"permission"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	ExpiresAt  *time.Time          `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}

// Expired reports whether the grant has an expiry in the past.
func (a *FileAccess) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

// FolderAccess grants one user a permission on one folder. Propagate controls
// whether the grant is copied onto existing descendants at grant time.
type FolderAccess struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FolderID   primitive.ObjectID  `bson:"folder_id" json:"folder_id"`
	GrantedTo  primitive.ObjectID  `bson:"granted_to" json:"granted_to"`
	GrantedBy  *primitive.ObjectID `bson:"granted_by,omitempty" json:"granted_by,omitempty"`
	Permission Permission          `bson:"permission" json:"permission"`
	Propagate  bool                `bson:"propagate" json:"propagate"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	ExpiresAt  *time.Time          `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}

func (a *FolderAccess) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

type GrantAccessRequest struct {
	Username   string     `json:"username" validate:"required"`
	Permission Permission `json:"permission" validate:"required,oneof=read edit"`
	Propagate  *bool      `json:"propagate"`
	ExpiresAt  *time.Time `json:"expires_at"`
}
