package store

import (
	"context"
	"time"

	"github.com/kevinaaaquil/docshare/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CountActiveAdmins returns the number of active users holding the ADMIN role.
func (db *DB) CountActiveAdmins(ctx context.Context) (int64, error) {
	return db.Users().CountDocuments(ctx, bson.M{"roles": models.RoleAdmin, "active": true})
}

func (db *DB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByID returns nil when no user has the id.
func (db *DB) UserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return db.findUser(ctx, bson.M{"_id": oid})
}

func (db *DB) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.findUser(ctx, bson.M{"username": username})
}

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.findUser(ctx, bson.M{"email": email})
}

// UserByLogin matches either the username or the email.
func (db *DB) UserByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	return db.findUser(ctx, bson.M{"$or": bson.A{
		bson.M{"username": usernameOrEmail},
		bson.M{"email": usernameOrEmail},
	}})
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, translate(err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ListUsers(ctx context.Context, activeOnly bool) ([]models.User, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	cur, err := db.Users().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UsersByIDs returns the users among ids that exist; unknown ids are skipped.
func (db *DB) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []models.User{}, nil
	}
	cur, err := db.Users().Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func userUpdate(patch models.UserPatch, now time.Time) bson.M {
	updates := bson.M{"updatedAt": now}
	if patch.Username != nil {
		updates["username"] = *patch.Username
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Password != nil {
		updates["password"] = *patch.Password
	}
	if patch.FirstName != nil {
		updates["firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["lastName"] = *patch.LastName
	}
	if patch.Roles != nil {
		updates["roles"] = *patch.Roles
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	return updates
}

// UpdateUser applies patch and returns the stored user afterwards.
func (db *DB) UpdateUser(ctx context.Context, id string, patch models.UserPatch, now time.Time) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err = db.Users().FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": userUpdate(patch, now)}, opts).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// DeleteUser reports whether a user was removed.
func (db *DB) DeleteUser(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := db.Users().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
