package access

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kevinaaaquil/docshare/backend/models"
)

// Kind selects one of the document sets a caller may list.
type Kind int

const (
	KindMine Kind = iota
	KindTeam
	KindSharedWithMe
	KindLink
	KindSearch
	KindAll
)

func (k Kind) String() string {
	switch k {
	case KindMine:
		return "mine"
	case KindTeam:
		return "team"
	case KindSharedWithMe:
		return "shared-with-me"
	case KindLink:
		return "link"
	case KindSearch:
		return "search"
	case KindAll:
		return "all"
	}
	return "unknown"
}

// Query describes a visible document set. The store turns it into a database
// filter; Matches is the same predicate evaluated on a single record.
type Query struct {
	Kind   Kind
	UserID string
	Link   string
	Term   string
}

func Mine(userID string) Query         { return Query{Kind: KindMine, UserID: userID} }
func Team() Query                      { return Query{Kind: KindTeam} }
func SharedWithMe(userID string) Query { return Query{Kind: KindSharedWithMe, UserID: userID} }
func ByShareableLink(link string) Query {
	return Query{Kind: KindLink, Link: link}
}
func Search(term string) Query { return Query{Kind: KindSearch, Term: term} }
func All() Query               { return Query{Kind: KindAll} }

func (q Query) Validate() error {
	switch q.Kind {
	case KindMine, KindSharedWithMe:
		if q.UserID == "" {
			return fmt.Errorf("%w: user id required", models.ErrValidation)
		}
	case KindLink:
		if strings.TrimSpace(q.Link) == "" {
			return fmt.Errorf("%w: link required", models.ErrValidation)
		}
	case KindSearch:
		if strings.TrimSpace(q.Term) == "" {
			return fmt.Errorf("%w: search term required", models.ErrValidation)
		}
	case KindTeam, KindAll:
	default:
		return fmt.Errorf("%w: unknown query kind %d", models.ErrValidation, q.Kind)
	}
	return nil
}

// Matches reports whether doc belongs to the set.
func (q Query) Matches(doc *models.Document) bool {
	if doc == nil {
		return false
	}
	switch q.Kind {
	case KindMine:
		return doc.OwnedBy(q.UserID)
	case KindTeam:
		return doc.TeamShared
	case KindSharedWithMe:
		return doc.SharedWith(q.UserID)
	case KindLink:
		return q.Link != "" && doc.ShareableLink == q.Link
	case KindSearch:
		term := strings.ToLower(q.Term)
		return strings.Contains(strings.ToLower(doc.Name), term) ||
			strings.Contains(strings.ToLower(doc.Description), term)
	case KindAll:
		return true
	}
	return false
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Window is an offset/limit slice of an ordered listing. A zero Limit means
// the whole listing.
type Window struct {
	Offset int
	Limit  int
}

// Page is the zero-based page number of a window, 0 for the whole listing.
func (w Window) Page() int {
	if w.Limit <= 0 {
		return 0
	}
	return w.Offset / w.Limit
}

// PageWindow converts a zero-based page number and page size into a window.
// Sizes above MaxPageSize are clamped.
func PageWindow(page, size int) (Window, error) {
	if page < 0 {
		return Window{}, fmt.Errorf("%w: page must not be negative", models.ErrValidation)
	}
	if size <= 0 {
		return Window{}, fmt.Errorf("%w: size must be positive", models.ErrValidation)
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page > math.MaxInt/size {
		return Window{}, fmt.Errorf("%w: page is out of range", models.ErrValidation)
	}
	return Window{Offset: page * size, Limit: size}, nil
}

// SortNewestFirst orders documents by creation time, newest first. Ties keep
// a stable order by id.
func SortNewestFirst(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID.Hex() > docs[j].ID.Hex()
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
}

// Filter evaluates q over docs in memory: membership first, then ordering,
// then the window. It returns the window and the full match count.
func Filter(docs []models.Document, q Query, w Window) ([]models.Document, int64) {
	var out []models.Document
	for i := range docs {
		if q.Matches(&docs[i]) {
			out = append(out, docs[i])
		}
	}
	SortNewestFirst(out)
	total := int64(len(out))
	if w.Offset < 0 {
		w.Offset = 0
	}
	if w.Offset >= len(out) {
		return []models.Document{}, total
	}
	out = out[w.Offset:]
	if w.Limit > 0 && w.Limit < len(out) {
		out = out[:w.Limit]
	}
	return out, total
}
