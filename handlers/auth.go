package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/kevinaaaquil/docshare/backend/service"
)

type AuthHandler struct {
	Users *service.UserService
}

type RegisterRequest struct {
	Username  string   `json:"username" validate:"required,min=3,max=50"`
	Email     string   `json:"email" validate:"required,email,max=254"`
	Password  string   `json:"password" validate:"required,min=6,max=100,password"`
	FirstName string   `json:"firstName" validate:"required,max=50"`
	LastName  string   `json:"lastName" validate:"required,max=50"`
	Roles     []string `json:"roles" validate:"max=10"` // ignored on self-registration
}

type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	Type  string       `json:"type"`
	User  *models.User `json:"user"`
}

// Register creates a USER account. Roles in the body are ignored.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Users.Register(r.Context(), service.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, user, err := h.Users.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Type: "Bearer", User: user})
}

// Me returns the identity carried by the caller's token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}
