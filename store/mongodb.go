package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	log      zerolog.Logger
}

func NewMongoDB(ctx context.Context, uri, dbName string, log zerolog.Logger) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log = log.With().Str("component", "mongodb").Logger()
	log.Info().Str("db", dbName).Msg("connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
		log:      log,
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Documents() *mongo.Collection {
	return db.Database.Collection("documents")
}

// EnsureIndexes creates the unique indexes the model relies on (username,
// email, shareable link) plus the lookup indexes of the visibility queries.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := db.Users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	}); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if _, err := db.Documents().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "shareableLink", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "teamShared", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sharedWithUsers", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("documents indexes: %w", err)
	}
	if _, err := db.Notifications().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "documentId", Value: 1}, {Key: "sentAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("notification indexes: %w", err)
	}
	db.log.Debug().Msg("indexes ensured")
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}

// objectID parses a hex id; malformed ids cannot name a record.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: id %q", models.ErrNotFound, id)
	}
	return oid, nil
}

// translate maps driver errors onto the model's error kinds.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %v", models.ErrNotFound, err)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", models.ErrConflict, err)
	}
	return err
}
