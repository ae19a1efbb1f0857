package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medsync/internal/auth"
	"medsync/internal/meds"
)

type AuthHandler struct {
	DB       *gorm.DB
	JWT      *auth.JWT
	Sessions *meds.Manager
}

type registerReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

func userToDTO(u auth.User) userDTO {
	return userDTO{ID: u.Email, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") || req.Name == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	u := auth.User{
		Email:              req.Email,
		Name:               req.Name,
		Avatar:             auth.AvatarURL(req.Name),
		NotificationEmails: []string{req.Email},
	}
	if err := h.DB.Create(&u).Error; err != nil {
		http.Error(w, "email already used", http.StatusConflict)
		return
	}

	h.issueToken(w, u)
}

// Login is deliberately passwordless: presenting an email is enough, and an
// unknown email creates the account on the spot with a name derived from the
// address.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	var u auth.User
	err := h.DB.Where("email = ?", req.Email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		name := auth.DeriveName(req.Email)
		u = auth.User{
			Email:              req.Email,
			Name:               name,
			Avatar:             auth.AvatarURL(name),
			NotificationEmails: []string{req.Email},
		}
		err = h.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&u).Error
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.issueToken(w, u)
}

// Logout drops the in-memory session. The persisted snapshot survives and
// rehydrates on the next login.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())
	h.Sessions.Unload(email)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, u auth.User) {
	token, err := h.JWT.Sign(u.Email)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user":  userToDTO(u),
	})
}
