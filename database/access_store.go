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

// AccessStore is the mongo-backed access grant store. All upserts key on
// (target, granted_to) so re-granting rewrites the existing row.
type AccessStore struct {
	fileAccess   *mongo.Collection
	folderAccess *mongo.Collection
}

func NewAccessStore() *AccessStore {
	return &AccessStore{
		fileAccess:   GetCollection(FileAccessCollection),
		folderAccess: GetCollection(FolderAccessCollection),
	}
}

func (s *AccessStore) UpsertFileAccess(ctx context.Context, access *models.FileAccess) (*models.FileAccess, error) {
	filter := bson.M{
		"file_id":    access.FileID,
		"granted_to": access.GrantedTo,
	}
	update := bson.M{
		"$set": bson.M{
			"permission": access.Permission,
			"granted_by": access.GrantedBy,
			"expires_at": access.ExpiresAt,
		},
		"$setOnInsert": bson.M{
			"file_id":    access.FileID,
			"granted_to": access.GrantedTo,
			"created_at": time.Now(),
		},
	}

	var updated models.FileAccess
	err := s.fileAccess.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *AccessStore) UpsertFolderAccess(ctx context.Context, access *models.FolderAccess) (*models.FolderAccess, error) {
	filter := bson.M{
		"folder_id":  access.FolderID,
		"granted_to": access.GrantedTo,
	}
	update := bson.M{
		"$set": bson.M{
			"permission": access.Permission,
			"granted_by": access.GrantedBy,
			"propagate":  access.Propagate,
			"expires_at": access.ExpiresAt,
		},
		"$setOnInsert": bson.M{
			"folder_id":  access.FolderID,
			"granted_to": access.GrantedTo,
			"created_at": time.Now(),
		},
	}

	var updated models.FolderAccess
	err := s.folderAccess.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *AccessStore) GetFileAccess(ctx context.Context, fileID, userID primitive.ObjectID) (*models.FileAccess, error) {
	var access models.FileAccess
	err := s.fileAccess.FindOne(ctx, bson.M{
		"file_id":    fileID,
		"granted_to": userID,
	}).Decode(&access)
	if err != nil {
		return nil, err
	}
	return &access, nil
}

func (s *AccessStore) GetFolderAccess(ctx context.Context, folderID, userID primitive.ObjectID) (*models.FolderAccess, error) {
	var access models.FolderAccess
	err := s.folderAccess.FindOne(ctx, bson.M{
		"folder_id":  folderID,
		"granted_to": userID,
	}).Decode(&access)
	if err != nil {
		return nil, err
	}
	return &access, nil
}

func (s *AccessStore) ListFileAccess(ctx context.Context, fileID primitive.ObjectID) ([]models.FileAccess, error) {
	cursor, err := s.fileAccess.Find(ctx, bson.M{"file_id": fileID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accesses []models.FileAccess
	if err = cursor.All(ctx, &accesses); err != nil {
		return nil, err
	}
	return accesses, nil
}

func (s *AccessStore) ListFolderAccess(ctx context.Context, folderID primitive.ObjectID) ([]models.FolderAccess, error) {
	cursor, err := s.folderAccess.Find(ctx, bson.M{"folder_id": folderID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accesses []models.FolderAccess
	if err = cursor.All(ctx, &accesses); err != nil {
		return nil, err
	}
	return accesses, nil
}

func (s *AccessStore) DeleteFileAccess(ctx context.Context, fileID, userID primitive.ObjectID) error {
	result, err := s.fileAccess.DeleteOne(ctx, bson.M{
		"file_id":    fileID,
		"granted_to": userID,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *AccessStore) DeleteFolderAccess(ctx context.Context, folderID, userID primitive.ObjectID) error {
	result, err := s.folderAccess.DeleteOne(ctx, bson.M{
		"folder_id":  folderID,
		"granted_to": userID,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteAllFileAccess removes every grant row for a file (file deletion cleanup)
func (s *AccessStore) DeleteAllFileAccess(ctx context.Context, fileID primitive.ObjectID) error {
	_, err := s.fileAccess.DeleteMany(ctx, bson.M{"file_id": fileID})
	return err
}

// DeleteAllFolderAccess removes every grant row for a folder (folder deletion cleanup)
func (s *AccessStore) DeleteAllFolderAccess(ctx context.Context, folderID primitive.ObjectID) error {
	_, err := s.folderAccess.DeleteMany(ctx, bson.M{"folder_id": folderID})
	return err
}
