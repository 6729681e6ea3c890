package database

import (
	"context"

	"capidrive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ShareLinkStore is the mongo-backed share link store
type ShareLinkStore struct {
	collection *mongo.Collection
}

func NewShareLinkStore() *ShareLinkStore {
	return &ShareLinkStore{collection: GetCollection(ShareLinksCollection)}
}

func (s *ShareLinkStore) Insert(ctx context.Context, link *models.ShareLink) error {
	if link.ID.IsZero() {
		link.ID = primitive.NewObjectID()
	}
	_, err := s.collection.InsertOne(ctx, link)
	return err
}

// GetByToken looks a link up by exact token match
func (s *ShareLinkStore) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	var link models.ShareLink
	err := s.collection.FindOne(ctx, bson.M{"token": token}).Decode(&link)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *ShareLinkStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ShareLink, error) {
	var link models.ShareLink
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&link)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *ShareLinkStore) ListByCreator(ctx context.Context, userID primitive.ObjectID) ([]models.ShareLink, error) {
	cursor, err := s.collection.Find(ctx,
		bson.M{"created_by": userID},
		options.Find().SetSort(bson.M{"created_at": -1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []models.ShareLink
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// Deactivate soft-revokes a link; the row stays for audit history
func (s *ShareLinkStore) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
