package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/kevinaaaquil/docshare/backend/access"
	"github.com/kevinaaaquil/docshare/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// documentFilter is the database form of access.Query.Matches.
func documentFilter(q access.Query) (bson.M, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	switch q.Kind {
	case access.KindMine:
		return bson.M{"ownerId": q.UserID}, nil
	case access.KindTeam:
		return bson.M{"teamShared": true}, nil
	case access.KindSharedWithMe:
		return bson.M{"sharedWithUsers": q.UserID}, nil
	case access.KindLink:
		return bson.M{"shareableLink": q.Link}, nil
	case access.KindSearch:
		pattern := regexp.QuoteMeta(q.Term)
		return bson.M{"$or": bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}}, nil
	case access.KindAll:
		return bson.M{}, nil
	}
	return nil, fmt.Errorf("%w: unsupported query %s", models.ErrValidation, q.Kind)
}

func (db *DB) InsertDocument(ctx context.Context, doc *models.Document) (primitive.ObjectID, error) {
	res, err := db.Documents().InsertOne(ctx, doc, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) DocumentByID(ctx context.Context, id string) (*models.Document, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := db.Documents().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

// DocumentByLink resolves a shareable link to its single document.
func (db *DB) DocumentByLink(ctx context.Context, link string) (*models.Document, error) {
	filter, err := documentFilter(access.ByShareableLink(link))
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := db.Documents().FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

// FindDocuments lists the documents of q newest first, windowed by w, and
// returns the total size of the set.
func (db *DB) FindDocuments(ctx context.Context, q access.Query, w access.Window) ([]models.Document, int64, error) {
	filter, err := documentFilter(q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(newestFirst)
	if w.Offset > 0 {
		opts.SetSkip(int64(w.Offset))
	}
	if w.Limit > 0 {
		opts.SetLimit(int64(w.Limit))
	}
	cur, err := db.Documents().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	docs := []models.Document{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	total := int64(len(docs))
	if w.Limit > 0 || w.Offset > 0 {
		if total, err = db.Documents().CountDocuments(ctx, filter); err != nil {
			return nil, 0, err
		}
	}
	return docs, total, nil
}

func documentUpdate(patch models.DocumentPatch, now time.Time) bson.M {
	updates := bson.M{"updatedAt": now}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.TeamShared != nil {
		updates["teamShared"] = *patch.TeamShared
	}
	if patch.SharedWithUsers != nil {
		updates["sharedWithUsers"] = *patch.SharedWithUsers
	}
	return updates
}

// UpdateDocument applies patch and returns the stored document afterwards.
// Owner and shareable link are never part of an update.
func (db *DB) UpdateDocument(ctx context.Context, id string, patch models.DocumentPatch, now time.Time) (*models.Document, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.Document
	err = db.Documents().FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": documentUpdate(patch, now)}, opts).Decode(&doc)
	if err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

// TouchDocument records a successful content retrieval.
func (db *DB) TouchDocument(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := db.Documents().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastAccessedAt": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: document %s", models.ErrNotFound, id.Hex())
	}
	return nil
}

func (db *DB) DeleteDocument(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.Documents().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: document %s", models.ErrNotFound, id.Hex())
	}
	return nil
}
