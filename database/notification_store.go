package database

import (
	"context"

	"capidrive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationStore is the mongo-backed notification feed
type NotificationStore struct {
	collection *mongo.Collection
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{collection: GetCollection(NotificationsCollection)}
}

func (s *NotificationStore) Insert(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	_, err := s.collection.InsertOne(ctx, notification)
	return err
}

func (s *NotificationStore) ListForRecipient(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	cursor, err := s.collection.Find(ctx,
		bson.M{"recipient_id": userID},
		options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(100),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
