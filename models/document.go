package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Document struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	FileName        string             `bson:"fileName" json:"fileName"`
	FileType        string             `bson:"fileType" json:"fileType"` // extension, e.g. ".pdf"
	FileSize        int64              `bson:"fileSize" json:"fileSize"`
	ContentType     string             `bson:"contentType" json:"contentType"`
	OwnerID         string             `bson:"ownerId" json:"ownerId"`
	OwnerName       string             `bson:"ownerName" json:"ownerName"`
	BlobKey         string             `bson:"blobKey" json:"-"` // object key in S3
	ShareableLink   string             `bson:"shareableLink" json:"shareableLink"`
	TeamShared      bool               `bson:"teamShared" json:"teamShared"`
	SharedWithUsers []string           `bson:"sharedWithUsers" json:"sharedWithUsers"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
	LastAccessedAt  time.Time          `bson:"lastAccessedAt" json:"lastAccessedAt"`
}

func (d *Document) OwnedBy(userID string) bool {
	return userID != "" && d.OwnerID == userID
}

func (d *Document) SharedWith(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range d.SharedWithUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// DocumentPatch carries the fields of a partial document update. Nil leaves the stored value.
type DocumentPatch struct {
	Name            *string
	Description     *string
	TeamShared      *bool
	SharedWithUsers *[]string
}

func (p DocumentPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.TeamShared == nil && p.SharedWithUsers == nil
}

// NormalizeSharedUsers returns a sorted, duplicate-free copy of ids without the owner.
// Owner access is implied and never represented as membership.
func NormalizeSharedUsers(ids []string, ownerID string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == ownerID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// FormatFileSize renders a byte count as B, KB, MB or GB with one decimal.
func FormatFileSize(size int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case size < kb:
		return fmt.Sprintf("%d B", size)
	case size < mb:
		return fmt.Sprintf("%.1f KB", float64(size)/kb)
	case size < gb:
		return fmt.Sprintf("%.1f MB", float64(size)/mb)
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/gb)
	}
}

// Page is one offset/limit window of an ordered listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func NewPage[T any](content []T, page, size int, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return Page[T]{Content: content, Page: page, Size: size, TotalElements: total, TotalPages: pages}
}
