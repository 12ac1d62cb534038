package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/kevinaaaquil/docshare/backend/access"
	"github.com/kevinaaaquil/docshare/backend/auth"
	"github.com/kevinaaaquil/docshare/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrBlobNotFound = errors.New("blob not found")

// DocumentStore is the record store for documents; *store.DB implements it.
type DocumentStore interface {
	InsertDocument(ctx context.Context, doc *models.Document) (primitive.ObjectID, error)
	DocumentByID(ctx context.Context, id string) (*models.Document, error)
	DocumentByLink(ctx context.Context, link string) (*models.Document, error)
	FindDocuments(ctx context.Context, q access.Query, w access.Window) ([]models.Document, int64, error)
	UpdateDocument(ctx context.Context, id string, patch models.DocumentPatch, now time.Time) (*models.Document, error)
	TouchDocument(ctx context.Context, id primitive.ObjectID, at time.Time) error
	DeleteDocument(ctx context.Context, id primitive.ObjectID) error
}

// UserStore is the record store for users; *store.DB implements it. Lookups
// return a nil user when nothing matches.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	ListUsers(ctx context.Context, activeOnly bool) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch, now time.Time) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	CountActiveAdmins(ctx context.Context) (int64, error)
}

// BlobStore holds document content; *S3Service implements it.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType, fileName string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration, fileName string) (string, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Matches(plain, hash string) bool
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

// ShareNotifier is told about users who just gained access to a document.
type ShareNotifier interface {
	DocumentShared(ctx context.Context, doc *models.Document, sharedBy string, recipients []models.User)
}

// NotificationLog keeps a record of share emails; *store.DB implements it.
type NotificationLog interface {
	InsertNotification(ctx context.Context, n *models.ShareNotification) error
	NotificationsForDocument(ctx context.Context, docID primitive.ObjectID) ([]models.ShareNotification, error)
}
