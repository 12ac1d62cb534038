package store

import (
	"context"

	"github.com/kevinaaaquil/docshare/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) Notifications() *mongo.Collection {
	return db.Database.Collection("share_notifications")
}

// InsertNotification records one share email, delivered or not.
func (db *DB) InsertNotification(ctx context.Context, n *models.ShareNotification) error {
	_, err := db.Notifications().InsertOne(ctx, n, options.InsertOne())
	return err
}

// NotificationsForDocument lists the share emails of a document, newest first.
func (db *DB) NotificationsForDocument(ctx context.Context, docID primitive.ObjectID) ([]models.ShareNotification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}})
	cur, err := db.Notifications().Find(ctx, bson.M{"documentId": docID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.ShareNotification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
