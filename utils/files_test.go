package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowedExtension(t *testing.T) {
	for _, ext := range []string{".pdf", ".DOCX", ".png", ".csv"} {
		assert.True(t, AllowedExtension(ext), ext)
	}
	for _, ext := range []string{"", ".exe", ".epub", "pdf"} {
		assert.False(t, AllowedExtension(ext), ext)
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeFor("report.PDF", ""))
	assert.Equal(t, "text/csv", ContentTypeFor("data.csv", "application/octet-stream"))
	assert.Equal(t, "text/plain; charset=utf-8", ContentTypeFor("notes.txt", "text/plain; charset=utf-8"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("blob", ""))
}

func TestNewShareableLinkIsUniqueHex(t *testing.T) {
	a, b := NewShareableLink(), NewShareableLink()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), a)
	assert.NotEqual(t, a, b)
}

func TestBlobKey(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	key := BlobKey("owner1", "Quarterly Plan.docx", now)
	assert.Regexp(t, regexp.MustCompile(`^documents/owner1/20260304_050607_[0-9a-f]{32}\.docx$`), key)
}
