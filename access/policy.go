// Package access decides what an identity may do with a document and which
// documents it may list. Every decision is a pure function of the identity
// and the document record.
package access

import (
	"fmt"

	"github.com/kevinaaaquil/docshare/backend/auth"
	"github.com/kevinaaaquil/docshare/backend/models"
)

// CanAccess reports whether id may read the document's content through the
// authenticated path: owner, team-shared or explicitly shared.
func CanAccess(id auth.Identity, doc *models.Document) bool {
	if doc == nil || id.UserID == "" {
		return false
	}
	return doc.OwnedBy(id.UserID) || doc.TeamShared || doc.SharedWith(id.UserID)
}

// CanView reports whether id may read the document's metadata. Admins may
// inspect any record; everyone else follows CanAccess.
func CanView(id auth.Identity, doc *models.Document) bool {
	return CanAccess(id, doc) || (doc != nil && id.IsAdmin())
}

// CanDelete covers the general delete path: owners delete their own
// documents, admins delete any document.
func CanDelete(id auth.Identity, doc *models.Document, isAdmin bool) bool {
	if doc == nil {
		return false
	}
	return isAdmin || doc.OwnedBy(id.UserID)
}

// CheckTeamDelete covers the admin team-delete path, which only ever removes
// team-shared documents, whoever the caller is.
func CheckTeamDelete(id auth.Identity, doc *models.Document) error {
	if !id.IsAdmin() {
		return fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	if doc == nil || !doc.TeamShared {
		return fmt.Errorf("%w: only team-shared documents can be deleted by admin", models.ErrForbidden)
	}
	return nil
}

// CanModify decides update and share operations. With ownerOnly unset any
// authenticated caller may alter a document's metadata and sharing state.
func CanModify(id auth.Identity, doc *models.Document, ownerOnly bool) bool {
	if doc == nil || id.UserID == "" {
		return false
	}
	if !ownerOnly {
		return true
	}
	return doc.OwnedBy(id.UserID) || id.IsAdmin()
}
