package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kevinaaaquil/docshare/backend/access"
	"github.com/kevinaaaquil/docshare/backend/auth"
	"github.com/kevinaaaquil/docshare/backend/metrics"
	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/kevinaaaquil/docshare/backend/utils"
	"github.com/rs/zerolog"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 1000
)

// DocumentService owns the document lifecycle: upload, listing, content
// retrieval, sharing and deletion. Record and blob are kept consistent: a
// document record never outlives its blob on a successful delete.
type DocumentService struct {
	Docs     DocumentStore
	Blobs    BlobStore
	Users    UserStore
	Notifier ShareNotifier   // optional
	Sent     NotificationLog // optional

	MaxBytes         int64
	PresignTTL       time.Duration
	OwnerOnlySharing bool

	Log zerolog.Logger
	Now func() time.Time
}

func (s *DocumentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// UploadInput is one multipart upload.
type UploadInput struct {
	Name            string
	Description     string
	TeamShared      bool
	SharedWithUsers []string
	FileName        string
	DeclaredType    string
	Size            int64
	Body            io.Reader
}

// Content is a readable document body. Caller must close Body.
type Content struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
}

func (s *DocumentService) validateUpload(in *UploadInput) error {
	in.FileName = strings.TrimSpace(in.FileName)
	if in.Body == nil || in.Size == 0 {
		return fmt.Errorf("%w: file is empty", models.ErrValidation)
	}
	if in.FileName == "" {
		return fmt.Errorf("%w: file name is required", models.ErrValidation)
	}
	if s.MaxBytes > 0 && in.Size > s.MaxBytes {
		return fmt.Errorf("%w: file exceeds %s limit", models.ErrValidation, models.FormatFileSize(s.MaxBytes))
	}
	if ext := utils.FileExtension(in.FileName); !utils.AllowedExtension(ext) {
		return fmt.Errorf("%w: file type %q is not allowed", models.ErrValidation, ext)
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		in.Name = in.FileName
	}
	return validateText(in.Name, in.Description)
}

func validateText(name, description string) error {
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", models.ErrValidation, maxNameLength)
	}
	if len(description) > maxDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", models.ErrValidation, maxDescriptionLength)
	}
	return nil
}

// Upload stores the content under a fresh blob key and records the document
// as owned by id. A failed insert removes the stored blob again.
func (s *DocumentService) Upload(ctx context.Context, id auth.Identity, in UploadInput) (*models.Document, error) {
	if id.UserID == "" {
		return nil, models.ErrInvalidToken
	}
	if err := s.validateUpload(&in); err != nil {
		return nil, err
	}

	now := s.now()
	ext := strings.ToLower(utils.FileExtension(in.FileName))
	doc := &models.Document{
		Name:            in.Name,
		Description:     strings.TrimSpace(in.Description),
		FileName:        in.FileName,
		FileType:        ext,
		FileSize:        in.Size,
		ContentType:     utils.ContentTypeFor(in.FileName, in.DeclaredType),
		OwnerID:         id.UserID,
		OwnerName:       id.Username,
		BlobKey:         utils.BlobKey(id.UserID, in.FileName, now),
		ShareableLink:   utils.NewShareableLink(),
		TeamShared:      in.TeamShared,
		SharedWithUsers: models.NormalizeSharedUsers(in.SharedWithUsers, id.UserID),
		CreatedAt:       now,
		UpdatedAt:       now,
		LastAccessedAt:  now,
	}

	if err := s.Blobs.Put(ctx, doc.BlobKey, in.Body, in.Size, doc.ContentType, doc.FileName); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	oid, err := s.Docs.InsertDocument(ctx, doc)
	if err != nil {
		if _, derr := s.Blobs.Delete(ctx, doc.BlobKey); derr != nil {
			s.Log.Error().Err(derr).Str("blob_key", doc.BlobKey).Msg("failed to remove orphaned blob")
		}
		return nil, err
	}
	doc.ID = oid

	s.Log.Info().Str("document_id", oid.Hex()).Str("owner_id", id.UserID).
		Int64("size", doc.FileSize).Msg("document uploaded")
	s.notify(ctx, doc, id, doc.SharedWithUsers)
	return doc, nil
}

// Get returns the metadata of a document id may view.
func (s *DocumentService) Get(ctx context.Context, id auth.Identity, docID string) (*models.Document, error) {
	doc, err := s.Docs.DocumentByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	allowed := access.CanView(id, doc)
	metrics.AccessDecision("view", allowed)
	if !allowed {
		return nil, fmt.Errorf("%w: access denied", models.ErrForbidden)
	}
	return doc, nil
}

// ByLink resolves a shareable link to document metadata without authentication.
func (s *DocumentService) ByLink(ctx context.Context, link string) (*models.Document, error) {
	if err := access.ByShareableLink(link).Validate(); err != nil {
		return nil, err
	}
	return s.Docs.DocumentByLink(ctx, link)
}

// List returns the document set q selects, windowed by w. A zero window
// returns the whole set as a single page.
func (s *DocumentService) List(ctx context.Context, q access.Query, w access.Window) (models.Page[models.Document], error) {
	if err := q.Validate(); err != nil {
		return models.Page[models.Document]{}, err
	}
	if w.Offset < 0 || w.Limit < 0 {
		return models.Page[models.Document]{}, fmt.Errorf("%w: invalid window", models.ErrValidation)
	}
	docs, total, err := s.Docs.FindDocuments(ctx, q, w)
	if err != nil {
		return models.Page[models.Document]{}, err
	}
	size := w.Limit
	if size == 0 {
		size = len(docs)
	}
	return models.NewPage(docs, w.Page(), size, total), nil
}

// Download opens the content of a document id may access and stamps its
// last access time. A denied request leaves the record untouched.
func (s *DocumentService) Download(ctx context.Context, id auth.Identity, docID string) (*Content, *models.Document, error) {
	doc, err := s.Docs.DocumentByID(ctx, docID)
	if err != nil {
		return nil, nil, err
	}
	allowed := access.CanAccess(id, doc)
	metrics.AccessDecision("download", allowed)
	if !allowed {
		s.Log.Warn().Str("document_id", docID).Str("user_id", id.UserID).Msg("download denied")
		return nil, nil, fmt.Errorf("%w: access denied", models.ErrForbidden)
	}
	return s.open(ctx, doc)
}

// DownloadByLink opens the content behind a shareable link. Holding the link
// is the whole capability.
func (s *DocumentService) DownloadByLink(ctx context.Context, link string) (*Content, *models.Document, error) {
	doc, err := s.ByLink(ctx, link)
	if err != nil {
		return nil, nil, err
	}
	metrics.AccessDecision("link", true)
	return s.open(ctx, doc)
}

func (s *DocumentService) open(ctx context.Context, doc *models.Document) (*Content, *models.Document, error) {
	body, ct, err := s.Blobs.Get(ctx, doc.BlobKey)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			s.Log.Error().Str("document_id", doc.ID.Hex()).Str("blob_key", doc.BlobKey).Msg("document blob missing")
			return nil, nil, fmt.Errorf("%w: document content", models.ErrNotFound)
		}
		return nil, nil, err
	}
	if err := s.touch(ctx, doc); err != nil {
		body.Close()
		return nil, nil, err
	}
	if ct == "" {
		ct = doc.ContentType
	}
	return &Content{Body: body, FileName: doc.FileName, ContentType: ct, Size: doc.FileSize}, doc, nil
}

func (s *DocumentService) touch(ctx context.Context, doc *models.Document) error {
	at := s.now()
	if err := s.Docs.TouchDocument(ctx, doc.ID, at); err != nil {
		return err
	}
	doc.LastAccessedAt = at
	return nil
}

// PresignedURL hands out a short-lived direct download URL for a document id
// may access. Issuing the URL counts as an access.
func (s *DocumentService) PresignedURL(ctx context.Context, id auth.Identity, docID string) (string, time.Time, error) {
	doc, err := s.Docs.DocumentByID(ctx, docID)
	if err != nil {
		return "", time.Time{}, err
	}
	allowed := access.CanAccess(id, doc)
	metrics.AccessDecision("presign", allowed)
	if !allowed {
		return "", time.Time{}, fmt.Errorf("%w: access denied", models.ErrForbidden)
	}
	ttl := s.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	url, err := s.Blobs.PresignedGetURL(ctx, doc.BlobKey, ttl, doc.FileName)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.touch(ctx, doc); err != nil {
		return "", time.Time{}, err
	}
	return url, s.now().Add(ttl), nil
}

// Update changes name, description and sharing state of a document.
func (s *DocumentService) Update(ctx context.Context, id auth.Identity, docID string, patch models.DocumentPatch) (*models.Document, error) {
	doc, err := s.Docs.DocumentByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	allowed := access.CanModify(id, doc, s.OwnerOnlySharing)
	metrics.AccessDecision("update", allowed)
	if !allowed {
		return nil, fmt.Errorf("%w: only the owner or an admin can change this document", models.ErrForbidden)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be blank", models.ErrValidation)
		}
		patch.Name = &name
	}
	name, description := "", ""
	if patch.Name != nil {
		name = *patch.Name
	}
	if patch.Description != nil {
		description = *patch.Description
	}
	if err := validateText(name, description); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return doc, nil
	}

	var added []string
	if patch.SharedWithUsers != nil {
		shared := models.NormalizeSharedUsers(*patch.SharedWithUsers, doc.OwnerID)
		patch.SharedWithUsers = &shared
		added = newlyShared(doc.SharedWithUsers, shared)
	}
	updated, err := s.Docs.UpdateDocument(ctx, docID, patch, s.now())
	if err != nil {
		return nil, err
	}
	s.Log.Info().Str("document_id", docID).Str("user_id", id.UserID).Msg("document updated")
	s.notify(ctx, updated, id, added)
	return updated, nil
}

// Share replaces the team flag and, when given, the explicit share list.
func (s *DocumentService) Share(ctx context.Context, id auth.Identity, docID string, teamShared bool, users []string) (*models.Document, error) {
	patch := models.DocumentPatch{TeamShared: &teamShared}
	if users != nil {
		patch.SharedWithUsers = &users
	}
	return s.Update(ctx, id, docID, patch)
}

// Delete removes a document owned by id, or any document when id is an admin.
func (s *DocumentService) Delete(ctx context.Context, id auth.Identity, docID string) error {
	doc, err := s.Docs.DocumentByID(ctx, docID)
	if err != nil {
		return err
	}
	allowed := access.CanDelete(id, doc, id.IsAdmin())
	metrics.AccessDecision("delete", allowed)
	if !allowed {
		return fmt.Errorf("%w: only the owner or an admin can delete this document", models.ErrForbidden)
	}
	return s.remove(ctx, id, doc)
}

// DeleteTeam is the admin path that removes team-shared documents only.
func (s *DocumentService) DeleteTeam(ctx context.Context, id auth.Identity, docID string) error {
	doc, err := s.Docs.DocumentByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := access.CheckTeamDelete(id, doc); err != nil {
		metrics.AccessDecision("team_delete", false)
		return err
	}
	metrics.AccessDecision("team_delete", true)
	return s.remove(ctx, id, doc)
}

// remove deletes the blob before the record.
func (s *DocumentService) remove(ctx context.Context, id auth.Identity, doc *models.Document) error {
	found, err := s.Blobs.Delete(ctx, doc.BlobKey)
	if err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if !found {
		s.Log.Warn().Str("document_id", doc.ID.Hex()).Str("blob_key", doc.BlobKey).Msg("blob already gone")
	}
	if err := s.Docs.DeleteDocument(ctx, doc.ID); err != nil {
		return err
	}
	s.Log.Info().Str("document_id", doc.ID.Hex()).Str("user_id", id.UserID).Msg("document deleted")
	return nil
}

// Notifications lists the share emails sent for a document. Only the owner
// or an admin sees them.
func (s *DocumentService) Notifications(ctx context.Context, id auth.Identity, docID string) ([]models.ShareNotification, error) {
	doc, err := s.Docs.DocumentByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !access.CanModify(id, doc, true) {
		return nil, fmt.Errorf("%w: only the owner or an admin can see notifications", models.ErrForbidden)
	}
	if s.Sent == nil {
		return []models.ShareNotification{}, nil
	}
	return s.Sent.NotificationsForDocument(ctx, doc.ID)
}

func (s *DocumentService) notify(ctx context.Context, doc *models.Document, by auth.Identity, userIDs []string) {
	if s.Notifier == nil || s.Users == nil || len(userIDs) == 0 {
		return
	}
	recipients, err := s.Users.UsersByIDs(ctx, userIDs)
	if err != nil {
		s.Log.Warn().Err(err).Str("document_id", doc.ID.Hex()).Msg("could not resolve share recipients")
		return
	}
	if len(recipients) > 0 {
		s.Notifier.DocumentShared(ctx, doc, by.Username, recipients)
	}
}

func newlyShared(before, after []string) []string {
	had := make(map[string]struct{}, len(before))
	for _, id := range before {
		had[id] = struct{}{}
	}
	var added []string
	for _, id := range after {
		if _, ok := had[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}
