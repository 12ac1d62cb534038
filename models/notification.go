package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareNotification records an email telling a user that a document was shared with them.
type ShareNotification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocumentID   primitive.ObjectID `bson:"documentId" json:"documentId"`
	DocumentName string             `bson:"documentName" json:"documentName"`
	RecipientID  string             `bson:"recipientId" json:"recipientId"`
	ToEmail      string             `bson:"toEmail" json:"toEmail"`
	SharedBy     string             `bson:"sharedBy" json:"sharedBy"`
	Error        string             `bson:"error,omitempty" json:"error,omitempty"`
	SentAt       time.Time          `bson:"sentAt" json:"sentAt"`
}
