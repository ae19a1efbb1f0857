package handler

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"medsync/internal/auth"
)

type MeHandler struct {
	DB *gorm.DB
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())

	var u auth.User
	if err := h.DB.Where("email = ?", email).First(&u).Error; err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(userToDTO(u))
}
