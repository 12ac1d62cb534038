package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/docshare/backend/access"
	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/kevinaaaquil/docshare/backend/service"
	"github.com/rs/zerolog/hlog"
)

// multipartOverhead is the room left for form fields next to the file itself.
const multipartOverhead = 1 << 20

type DocumentsHandler struct {
	Docs     *service.DocumentService
	MaxBytes int64
}

type DocumentResponse struct {
	models.Document
	FormattedFileSize string `json:"formattedFileSize"`
}

func documentResponse(d *models.Document) DocumentResponse {
	return DocumentResponse{Document: *d, FormattedFileSize: models.FormatFileSize(d.FileSize)}
}

func documentPage(p models.Page[models.Document]) models.Page[DocumentResponse] {
	out := make([]DocumentResponse, 0, len(p.Content))
	for i := range p.Content {
		out = append(out, documentResponse(&p.Content[i]))
	}
	return models.Page[DocumentResponse]{
		Content:       out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}

type UpdateDocumentRequest struct {
	Name            *string   `json:"name" validate:"omitempty,max=255"`
	Description     *string   `json:"description" validate:"omitempty,max=1000"`
	IsTeamShared    *bool     `json:"isTeamShared"`
	SharedWithUsers *[]string `json:"sharedWithUsers"`
}

type ShareDocumentRequest struct {
	IsTeamShared    *bool    `json:"isTeamShared" validate:"required"`
	SharedWithUsers []string `json:"sharedWithUsers"`
}

type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Upload accepts multipart/form-data with a "file" part plus name,
// description, isTeamShared and sharedWithUsers (comma separated ids).
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, fmt.Errorf("%w: file is too large", models.ErrValidation))
			return
		}
		writeError(w, r, fmt.Errorf("%w: failed to parse multipart form", models.ErrValidation))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: missing file", models.ErrValidation))
		return
	}
	defer file.Close()

	teamShared := false
	if v := strings.TrimSpace(r.FormValue("isTeamShared")); v != "" {
		if teamShared, err = strconv.ParseBool(v); err != nil {
			writeError(w, r, fmt.Errorf("%w: isTeamShared must be true or false", models.ErrValidation))
			return
		}
	}

	doc, err := h.Docs.Upload(r.Context(), id, service.UploadInput{
		Name:            r.FormValue("name"),
		Description:     r.FormValue("description"),
		TeamShared:      teamShared,
		SharedWithUsers: splitIDs(r.MultipartForm.Value["sharedWithUsers"]),
		FileName:        header.Filename,
		DeclaredType:    header.Header.Get("Content-Type"),
		Size:            header.Size,
		Body:            file,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentResponse(doc))
}

// splitIDs accepts repeated form values, comma separated values, or both.
func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (h *DocumentsHandler) list(w http.ResponseWriter, r *http.Request, q access.Query) {
	win, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.Docs.List(r.Context(), q, win)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentPage(result))
}

func (h *DocumentsHandler) MyFiles(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.list(w, r, access.Mine(id.UserID))
}

func (h *DocumentsHandler) TeamFiles(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, access.Team())
}

func (h *DocumentsHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.list(w, r, access.SharedWithMe(id.UserID))
}

// Search matches q against name and description, case-insensitively.
func (h *DocumentsHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, access.Search(r.URL.Query().Get("q")))
}

func (h *DocumentsHandler) AdminAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, access.All())
}

func (h *DocumentsHandler) AdminTeam(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, access.Team())
}

func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.Docs.Get(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

func (h *DocumentsHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	content, _, err := h.Docs.Download(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	stream(w, r, content)
}

// DownloadByLink serves the content behind a shareable link without authentication.
func (h *DocumentsHandler) DownloadByLink(w http.ResponseWriter, r *http.Request) {
	content, _, err := h.Docs.DownloadByLink(r.Context(), chi.URLParam(r, "link"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	stream(w, r, content)
}

func stream(w http.ResponseWriter, r *http.Request, c *service.Content) {
	defer c.Body.Close()
	w.Header().Set("Content-Type", c.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": c.FileName}))
	if c.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(c.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, c.Body); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("download interrupted")
	}
}

// DownloadURL returns a presigned URL the client can fetch the content from directly.
func (h *DocumentsHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	url, expires, err := h.Docs.PresignedURL(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DownloadURLResponse{URL: url, ExpiresAt: expires})
}

func (h *DocumentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req UpdateDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.Docs.Update(r.Context(), id, chi.URLParam(r, "id"), models.DocumentPatch{
		Name:            req.Name,
		Description:     req.Description,
		TeamShared:      req.IsTeamShared,
		SharedWithUsers: req.SharedWithUsers,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

func (h *DocumentsHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ShareDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.Docs.Share(r.Context(), id, chi.URLParam(r, "id"), *req.IsTeamShared, req.SharedWithUsers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Docs.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTeam is the admin removal of a team-shared document.
func (h *DocumentsHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Docs.DeleteTeam(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentsHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.Docs.Notifications(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
