package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RunMigrations creates the indexes the data model relies on
func RunMigrations() error {
	log.Println("Running database migrations...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		FoldersCollection: {
			// Sibling folders under the same owner cannot share a name
			{
				Keys:    bson.D{{Key: "name", Value: 1}, {Key: "owner_id", Value: 1}, {Key: "parent_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		FilesCollection: {
			{Keys: bson.D{{Key: "folder_id", Value: 1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
			{Keys: bson.D{{Key: "uploader_id", Value: 1}}},
		},
		FileAccessCollection: {
			// Re-granting updates the existing row rather than duplicating
			{
				Keys:    bson.D{{Key: "file_id", Value: 1}, {Key: "granted_to", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "granted_to", Value: 1}}},
		},
		FolderAccessCollection: {
			{
				Keys:    bson.D{{Key: "folder_id", Value: 1}, {Key: "granted_to", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "granted_to", Value: 1}}},
		},
		ShareLinksCollection: {
			{
				Keys:    bson.D{{Key: "token", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
		},
		NotificationsCollection: {
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := GetCollection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
