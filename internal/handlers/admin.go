package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
	"github.com/shrimpsizemoose/semla/internal/models"
)

type AdminHandler struct {
	service *app.Service
}

func NewAdminHandler(service *app.Service) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/admin/users", start, "GET")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	users, err := h.service.ListUsers(*actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
	})
}

func (h *AdminHandler) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/admin/users", start, "POST")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.RegisterUser(*actor, input.Email, input.FullName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info.Printf("User %s registered by %s", user.Email, actor.Email)
	writeJSON(w, http.StatusCreated, user)
}

func (h *AdminHandler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/admin/users/{user_id}/promote", start, "POST")

	h.changeRole(w, r, h.service.PromoteUser, "promoted")
}

func (h *AdminHandler) HandleDemote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/admin/users/{user_id}/demote", start, "POST")

	h.changeRole(w, r, h.service.DemoteUser, "demoted")
}

func (h *AdminHandler) changeRole(w http.ResponseWriter, r *http.Request, change func(models.Identity, string) error, verb string) {
	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID := r.PathValue("user_id")
	if userID == "" {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if err := change(*actor, userID); err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info.Printf("User %s %s by %s", userID, verb, actor.Email)
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": userID,
		"result":  verb,
	})
}

func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/admin/stats", start, "GET")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.service.DashboardStats(*actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
