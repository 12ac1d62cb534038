package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kevinaaaquil/docshare/backend/models"
)

// MinSecretLength is the key size HS512 needs (512 bits).
const MinSecretLength = 64

type Claims struct {
	UserID    string         `json:"userId"`
	Username  string         `json:"username"`
	Email     string         `json:"email,omitempty"`
	Roles     models.RoleSet `json:"roles"`
	FirstName string         `json:"firstName,omitempty"`
	LastName  string         `json:"lastName,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS512 signed identity tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes for HS512 (got %d)", MinSecretLength, len(secret))
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of the codec that reads time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for id that expires at issue time + TTL.
func (c *Codec) Issue(id Identity) (string, error) {
	roles := models.NewRoleSet(id.Roles...)
	if id.UserID == "" || id.Username == "" || !roles.Valid() {
		return "", fmt.Errorf("%w: incomplete identity", models.ErrValidation)
	}
	now := c.now()
	claims := &Claims{
		UserID:    id.UserID,
		Username:  id.Username,
		Email:     id.Email,
		Roles:     roles,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature, structure and expiry and returns the identity as
// issued. Every failure reason collapses into models.ErrInvalidToken.
func (c *Codec) Verify(raw string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, models.ErrInvalidToken
	}
	if claims.UserID == "" || claims.Username == "" || !claims.Roles.Valid() {
		return Identity{}, fmt.Errorf("%w: missing identity claims", models.ErrInvalidToken)
	}
	return Identity{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Roles:     claims.Roles,
	}, nil
}
