package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/repository/firestore"
	"github.com/agentic-store/concierge/pkg/repository/memory"
	"github.com/agentic-store/concierge/pkg/utils/errutil"
)

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.uc.ListIssues(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"issues": issues, "total": len(issues)})
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	id := model.IssueID(chi.URLParam(r, "issueID"))

	issue, err := s.uc.GetIssue(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			http.Error(w, "issue not found", http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	id := model.IssueID(chi.URLParam(r, "issueID"))

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	status, err := types.ParseIssueStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	issue, err := s.uc.UpdateIssueStatus(r.Context(), id, status)
	if err != nil {
		switch {
		case isNotFound(err):
			http.Error(w, "issue not found", http.StatusNotFound)
		case errors.Is(err, types.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, types.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	id := model.IssueID(chi.URLParam(r, "issueID"))

	if err := s.uc.DeleteIssue(r.Context(), id); err != nil {
		if isNotFound(err) {
			http.Error(w, "issue not found", http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
