package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Roles     RoleSet            `bson:"roles" json:"roles"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserPatch carries the fields of a partial user update. Nil leaves the stored value.
type UserPatch struct {
	Username  *string
	Email     *string
	Password  *string // already hashed
	FirstName *string
	LastName  *string
	Roles     *RoleSet
	Active    *bool
}

func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil &&
		p.FirstName == nil && p.LastName == nil && p.Roles == nil && p.Active == nil
}
