package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/utils/errutil"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.uc.Chat(r.Context(), userIDFrom(r.Context()), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMemoryClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id,omitempty"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	userID := userIDFrom(r.Context())
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = userID
	}

	if err := s.uc.ClearMemory(r.Context(), userID, sessionID); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
