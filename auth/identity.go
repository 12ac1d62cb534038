// Package auth holds the stateless identity model: the signed token codec,
// the role gate and password hashing.
package auth

import (
	"context"

	"github.com/kevinaaaquil/docshare/backend/models"
)

// Identity is the verified content of a bearer token. It is never re-read
// from the store: the token is the identity for its whole lifetime.
type Identity struct {
	UserID    string         `json:"userId"`
	Username  string         `json:"username"`
	Email     string         `json:"email,omitempty"`
	FirstName string         `json:"firstName,omitempty"`
	LastName  string         `json:"lastName,omitempty"`
	Roles     models.RoleSet `json:"roles"`
}

// IdentityFor builds the identity a token is issued for.
func IdentityFor(u *models.User) Identity {
	return Identity{
		UserID:    u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     models.NewRoleSet(u.Roles...),
	}
}

func (i Identity) IsAdmin() bool {
	return i.Roles.Has(models.RoleAdmin)
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
