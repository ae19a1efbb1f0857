package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"medsync/internal/assistant"
	"medsync/internal/meds"
)

type AssistantHandler struct {
	Assistant *assistant.Assistant
	Sessions  *meds.Manager
}

type chatReq struct {
	Message string `json:"message"`
}

// Chat asks the assistant one question. The session log is only appended to
// after a successful reply, so a failed call leaves no half-recorded turn.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		http.Error(w, "message required", http.StatusBadRequest)
		return
	}

	reply, err := h.Assistant.Ask(r.Context(), s.Messages(), req.Message)
	if err != nil {
		http.Error(w, "assistant unavailable, please try again", http.StatusBadGateway)
		return
	}

	s.AppendMessage(meds.RoleUser, req.Message)
	msg := s.AppendMessage(meds.RoleModel, reply)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"reply":     reply,
		"timestamp": msg.Timestamp,
	})
}

func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r, h.Sessions)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Messages())
}
