package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
)

type SessionHandler struct {
	service *app.Service
}

func NewSessionHandler(service *app.Service) *SessionHandler {
	return &SessionHandler{
		service: service,
	}
}

func (h *SessionHandler) bearerToken(r *http.Request) string {
	authHeader := r.Header.Get(h.service.Config.Auth.SessionHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// HandleRefresh re-reads the caller's role from the store into their
// session. This is how a promote or demote becomes visible without
// signing in again.
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/session/refresh", start, "POST")

	if h.service.Sessions == nil {
		http.Error(w, "Sessions are disabled", http.StatusNotFound)
		return
	}

	token := h.bearerToken(r)
	if token == "" {
		writeError(w, r, app.ErrUnauthenticated)
		return
	}

	identity, err := h.service.Sessions.Refresh(r.Context(), token, h.service.Store)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/session", start, "DELETE")

	if h.service.Sessions == nil {
		http.Error(w, "Sessions are disabled", http.StatusNotFound)
		return
	}

	token := h.bearerToken(r)
	if token == "" {
		writeError(w, r, app.ErrUnauthenticated)
		return
	}

	if err := h.service.Sessions.Invalidate(r.Context(), token); err != nil {
		writeError(w, r, err)
		return
	}

	logger.Debug.Printf("Session invalidated")
	w.WriteHeader(http.StatusNoContent)
}
