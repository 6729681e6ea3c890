package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	SenderID    *primitive.ObjectID `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	Type        string              `bson:"type" json:"type"`
	Message     string              `bson:"message" json:"message"`
	IsRead      bool                `bson:"is_read" json:"is_read"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}

const (
	NotificationFileReceived  = "file_received"
	NotificationAccessGranted = "access_granted"
)
