package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/kevinaaaquil/docshare/backend/access"
	"github.com/kevinaaaquil/docshare/backend/auth"
	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/rs/zerolog/hlog"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
	Path   string `json:"path"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error kind to its status code. Unclassified errors are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, models.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, models.ErrInvalidToken.Error()
	case errors.Is(err, models.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, models.ErrInvalidCredentials.Error()
	case errors.Is(err, models.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, models.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, models.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, models.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Status: status, Path: r.URL.Path})
}

// identity returns the caller verified by middleware.Auth.
func identity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, models.ErrInvalidToken
	}
	return id, nil
}

// pageParams reads the optional zero-based page and size query parameters.
// Without either the whole listing is returned.
func pageParams(r *http.Request) (access.Window, error) {
	q := r.URL.Query()
	rawPage, rawSize := strings.TrimSpace(q.Get("page")), strings.TrimSpace(q.Get("size"))
	if rawPage == "" && rawSize == "" {
		return access.Window{}, nil
	}
	page, size := 0, access.DefaultPageSize
	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if err != nil {
			return access.Window{}, fmt.Errorf("%w: page must be a number", models.ErrValidation)
		}
		page = n
	}
	if rawSize != "" {
		n, err := strconv.Atoi(rawSize)
		if err != nil {
			return access.Window{}, fmt.Errorf("%w: size must be a number", models.ErrValidation)
		}
		size = n
	}
	return access.PageWindow(page, size)
}
