package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
)

type AssignmentHandler struct {
	service *app.Service
}

func NewAssignmentHandler(service *app.Service) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
	}
}

func (h *AssignmentHandler) HandleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/assignments", start, "POST")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input app.AssignmentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	assignment, err := h.service.CreateAssignment(*actor, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info.Printf("Assignment %q created by %s", assignment.Title, actor.Email)
	writeJSON(w, http.StatusCreated, assignment)
}

func (h *AssignmentHandler) HandleListAssignments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/assignments", start, "GET")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	assignments, err := h.service.ListAssignments(*actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": assignments,
	})
}

func (h *AssignmentHandler) HandleAssignmentDetail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/assignments/{assignment_id}", start, "GET")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	assignmentID := r.PathValue("assignment_id")
	if assignmentID == "" {
		http.Error(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	detail, err := h.service.GetAssignmentDetail(*actor, assignmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
