package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"medsync/internal/extract"
)

type ExtractHandler struct {
	Adapter *extract.Adapter
}

type extractImageReq struct {
	Image    string `json:"image"` // base64
	MimeType string `json:"mimeType"`
}

// Image runs label-scan extraction. Failures never leave partial data behind;
// the client gets a retryable error message.
func (h *ExtractHandler) Image(w http.ResponseWriter, r *http.Request) {
	var req extractImageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Image == "" || !strings.HasPrefix(req.MimeType, "image/") {
		http.Error(w, "image and image/* mimeType required", http.StatusBadRequest)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		http.Error(w, "invalid base64 image", http.StatusBadRequest)
		return
	}

	candidates, err := h.Adapter.ExtractFromImage(r.Context(), raw, req.MimeType)
	if err != nil {
		http.Error(w, "could not read the label, please try again", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(candidates)
}

type extractTextReq struct {
	Description string `json:"description"`
}

func (h *ExtractHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req extractTextReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		http.Error(w, "description required", http.StatusBadRequest)
		return
	}

	candidate, err := h.Adapter.ExtractFromText(r.Context(), req.Description)
	if err != nil {
		http.Error(w, "could not understand the description, please try again", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(candidate)
}
