package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/docshare/backend/service"
)

// UsersHandler serves the admin user management routes.
type UsersHandler struct {
	Users *service.UserService
}

type CreateUserRequest struct {
	Username  string   `json:"username" validate:"required,min=3,max=50"`
	Email     string   `json:"email" validate:"required,email,max=254"`
	Password  string   `json:"password" validate:"required,min=6,max=100,password"`
	FirstName string   `json:"firstName" validate:"required,max=50"`
	LastName  string   `json:"lastName" validate:"required,max=50"`
	Roles     []string `json:"roles" validate:"max=10"`
}

type UpdateUserRequest struct {
	Username  *string   `json:"username" validate:"omitempty,min=3,max=50"`
	Email     *string   `json:"email" validate:"omitempty,email,max=254"`
	Password  *string   `json:"password" validate:"omitempty,min=6,max=100,password"`
	FirstName *string   `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName  *string   `json:"lastName" validate:"omitempty,min=2,max=50"`
	Roles     *[]string `json:"roles" validate:"omitempty,max=10"`
	Active    *bool     `json:"active"`
}

// CreateUser creates a user with explicit roles, USER when none are given.
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Users.CreateUser(r.Context(), service.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// ListUsers returns all users. Password hashes never leave the store layer.
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *UsersHandler) ListActiveUsers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	users, err := h.Users.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser patches a user by id. Body fields are all optional.
func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Users.Update(r.Context(), chi.URLParam(r, "id"), service.UserUpdate{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
		Active:    req.Active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser deletes a user by id. Callers cannot delete themselves.
func (h *UsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Users.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
