package utils

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// contentTypes lists the accepted upload extensions and the content type
// served for each when the upload did not declare one.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// FileExtension returns the extension of name including the dot, or "".
func FileExtension(name string) string {
	return filepath.Ext(strings.TrimSpace(name))
}

func AllowedExtension(ext string) bool {
	_, ok := contentTypes[strings.ToLower(ext)]
	return ok
}

// ContentTypeFor picks the declared content type when usable, otherwise the
// one registered for the file's extension.
func ContentTypeFor(fileName, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if ct, ok := contentTypes[strings.ToLower(FileExtension(fileName))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// NewShareableLink returns an unguessable 32 hex character token.
func NewShareableLink() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// BlobKey names the object for an upload: documents/<owner>/<yyyyMMdd_HHmmss>_<uuid><ext>.
func BlobKey(ownerID, fileName string, now time.Time) string {
	return "documents/" + ownerID + "/" + now.Format("20060102_150405") + "_" +
		NewShareableLink() + FileExtension(fileName)
}
