package database

import (
	"context"
	"time"

	"capidrive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FileStore is the mongo-backed file record store
type FileStore struct {
	collection *mongo.Collection
}

func NewFileStore() *FileStore {
	return &FileStore{collection: GetCollection(FilesCollection)}
}

func (s *FileStore) Insert(ctx context.Context, file *models.FileTransfer) error {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	_, err := s.collection.InsertOne(ctx, file)
	return err
}

func (s *FileStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FileTransfer, error) {
	var file models.FileTransfer
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&file)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// InFolder returns the files directly inside a folder
func (s *FileStore) InFolder(ctx context.Context, folderID primitive.ObjectID) ([]models.FileTransfer, error) {
	return s.find(ctx, bson.M{"folder_id": folderID})
}

// InRoot returns the files at the root of an owner's drive
func (s *FileStore) InRoot(ctx context.Context, ownerID primitive.ObjectID) ([]models.FileTransfer, error) {
	return s.find(ctx, bson.M{
		"owner_id":  ownerID,
		"folder_id": bson.M{"$exists": false},
	})
}

// ForUser returns every file the user owns or uploaded
func (s *FileStore) ForUser(ctx context.Context, userID primitive.ObjectID) ([]models.FileTransfer, error) {
	return s.find(ctx, bson.M{
		"$or": []bson.M{
			{"owner_id": userID},
			{"uploader_id": userID},
		},
	})
}

func (s *FileStore) Update(ctx context.Context, file *models.FileTransfer) error {
	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": file.ID}, file)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkViewed bulk-flags files as viewed
func (s *FileStore) MarkViewed(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"is_viewed": true}},
	)
	return err
}

// Expired returns files whose expiry passed before cutoff
func (s *FileStore) Expired(ctx context.Context, cutoff time.Time) ([]models.FileTransfer, error) {
	return s.find(ctx, bson.M{"expires_at": bson.M{"$lt": cutoff}})
}

func (s *FileStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *FileStore) find(ctx context.Context, filter bson.M) ([]models.FileTransfer, error) {
	cursor, err := s.collection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": -1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []models.FileTransfer
	if err = cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}
