package auth

import (
	"context"
	"testing"

	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIdentityFor(t *testing.T) {
	u := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "bob",
		Email:    "bob@example.com",
		Password: "hash",
		Roles:    models.RoleSet{models.RoleUser, models.RoleAdmin, models.RoleUser},
	}
	id := IdentityFor(u)
	assert.Equal(t, u.ID.Hex(), id.UserID)
	assert.Equal(t, models.RoleSet{models.RoleAdmin, models.RoleUser}, id.Roles)
	assert.True(t, id.IsAdmin())
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "x"})
	got, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "x", got.UserID)
}
