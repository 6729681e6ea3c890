package database

import (
	"context"

	"capidrive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FolderStore is the mongo-backed folder tree
type FolderStore struct {
	collection *mongo.Collection
}

func NewFolderStore() *FolderStore {
	return &FolderStore{collection: GetCollection(FoldersCollection)}
}

func (s *FolderStore) Insert(ctx context.Context, folder *models.Folder) error {
	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	_, err := s.collection.InsertOne(ctx, folder)
	return err
}

func (s *FolderStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&folder)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// Children returns the direct subfolders of a folder
func (s *FolderStore) Children(ctx context.Context, parentID primitive.ObjectID) ([]models.Folder, error) {
	cursor, err := s.collection.Find(ctx,
		bson.M{"parent_id": parentID},
		options.Find().SetSort(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	if err = cursor.All(ctx, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// Roots returns the parentless folders of an owner's drive
func (s *FolderStore) Roots(ctx context.Context, ownerID primitive.ObjectID) ([]models.Folder, error) {
	cursor, err := s.collection.Find(ctx,
		bson.M{
			"owner_id":  ownerID,
			"parent_id": bson.M{"$exists": false},
		},
		options.Find().SetSort(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	if err = cursor.All(ctx, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// SiblingExists reports whether (name, owner, parent) is already taken
func (s *FolderStore) SiblingExists(ctx context.Context, name string, ownerID primitive.ObjectID, parentID *primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"name":     name,
		"owner_id": ownerID,
	}
	if parentID != nil {
		filter["parent_id"] = *parentID
	} else {
		filter["parent_id"] = bson.M{"$exists": false}
	}

	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *FolderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
