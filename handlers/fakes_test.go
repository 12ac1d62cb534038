package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/kevinaaaquil/docshare/backend/access"
	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/kevinaaaquil/docshare/backend/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memDocs struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Document
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[primitive.ObjectID]models.Document{}}
}

func (m *memDocs) InsertDocument(_ context.Context, doc *models.Document) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.ShareableLink == doc.ShareableLink {
			return primitive.NilObjectID, models.ErrConflict
		}
	}
	c := *doc
	c.ID = primitive.NewObjectID()
	m.docs[c.ID] = c
	return c.ID, nil
}

func (m *memDocs) DocumentByID(_ context.Context, id string) (*models.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &d, nil
}

func (m *memDocs) DocumentByLink(_ context.Context, link string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.ShareableLink == link {
			return &d, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memDocs) FindDocuments(_ context.Context, q access.Query, w access.Window) ([]models.Document, int64, error) {
	m.mu.Lock()
	all := make([]models.Document, 0, len(m.docs))
	for _, d := range m.docs {
		all = append(all, d)
	}
	m.mu.Unlock()
	docs, total := access.Filter(all, q, w)
	return docs, total, nil
}

func (m *memDocs) UpdateDocument(_ context.Context, id string, p models.DocumentPatch, now time.Time) (*models.Document, error) {
	oid, _ := primitive.ObjectIDFromHex(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.TeamShared != nil {
		d.TeamShared = *p.TeamShared
	}
	if p.SharedWithUsers != nil {
		d.SharedWithUsers = *p.SharedWithUsers
	}
	d.UpdatedAt = now
	m.docs[oid] = d
	return &d, nil
}

func (m *memDocs) TouchDocument(_ context.Context, id primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return models.ErrNotFound
	}
	d.LastAccessedAt = at
	m.docs[id] = d
	return nil
}

func (m *memDocs) DeleteDocument(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (b *memBlobs) Put(_ context.Context, key string, body io.Reader, _ int64, _, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", service.ErrBlobNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), "", nil
}

func (b *memBlobs) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	delete(b.objects, key)
	return ok, nil
}

func (b *memBlobs) PresignedGetURL(_ context.Context, key string, expiry time.Duration, _ string) (string, error) {
	return fmt.Sprintf("https://blobs.test/%s?expires=%d", key, int(expiry.Seconds())), nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[primitive.ObjectID]models.User{}}
}

func (m *memUsers) find(match func(models.User) bool) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return &u
		}
	}
	return nil
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Username == u.Username || e.Email == u.Email {
			return primitive.NilObjectID, models.ErrConflict
		}
	}
	c := *u
	c.ID = primitive.NewObjectID()
	m.users[c.ID] = c
	return c.ID, nil
}

func (m *memUsers) UserByID(_ context.Context, id string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.ID.Hex() == id }), nil
}

func (m *memUsers) UserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Username == username }), nil
}

func (m *memUsers) UserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email }), nil
}

func (m *memUsers) UserByLogin(_ context.Context, login string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Username == login || u.Email == login }), nil
}

func (m *memUsers) UsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u := m.find(func(u models.User) bool { return u.ID.Hex() == id }); u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) ListUsers(_ context.Context, activeOnly bool) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if !activeOnly || u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) UpdateUser(_ context.Context, id string, p models.UserPatch, now time.Time) (*models.User, error) {
	oid, _ := primitive.ObjectIDFromHex(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[oid]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Roles != nil {
		u.Roles = *p.Roles
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	u.UpdatedAt = now
	m.users[oid] = u
	return &u, nil
}

func (m *memUsers) DeleteUser(_ context.Context, id string) (bool, error) {
	oid, _ := primitive.ObjectIDFromHex(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[oid]; !ok {
		return false, nil
	}
	delete(m.users, oid)
	return true, nil
}

func (m *memUsers) CountActiveAdmins(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Active && u.Roles.Has(models.RoleAdmin) {
			n++
		}
	}
	return n, nil
}
