package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
	"github.com/shrimpsizemoose/semla/internal/metrics"
)

// SubmissionsRoute and GradeRoute are the mux patterns for submission
// endpoints. Handlers reuse them as duration-metric labels so the
// histogram series always matches the registered API surface.
const (
	SubmissionsRoute = "/api/v1/assignments/{assignment_id}/submissions"
	GradeRoute       = "/api/v1/assignments/{assignment_id}/submissions/{student_id}/grade"
)

type SubmissionHandler struct {
	service *app.Service
}

func NewSubmissionHandler(service *app.Service) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
	}
}

// HandleSubmit accepts a multipart upload under the "file" field and
// upserts the submission for the authenticated student.
func (h *SubmissionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe(SubmissionsRoute, start, "POST")

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

	if err := r.ParseMultipartForm(h.service.Config.Uploads.MaxFileBytes); err != nil {
		logger.Debug.Printf("Failed to parse multipart form: %v", err)
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "A file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sub, err := h.service.SubmitAssignment(r.Context(), *actor, assignmentID, app.FileUpload{
		Name: header.Filename,
		Size: header.Size,
		Data: file,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeError(w, r, err)
		return
	}

	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	logger.Info.Printf("Submission for assignment %s by %s", assignmentID, actor.Email)
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) HandleListForAssignment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe(SubmissionsRoute, start, "GET")

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

	subs, err := h.service.ListSubmissionsForAssignment(*actor, assignmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": subs,
	})
}

func (h *SubmissionHandler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/submissions", start, "GET")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	subs, err := h.service.ListSubmissions(*actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": subs,
	})
}

func (h *SubmissionHandler) HandleGrade(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe(GradeRoute, start, "POST")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	assignmentID := r.PathValue("assignment_id")
	studentID := r.PathValue("student_id")
	if assignmentID == "" || studentID == "" {
		http.Error(w, "Invalid assignment or student id", http.StatusBadRequest)
		return
	}

	var input struct {
		Grade    string `json:"grade"`
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.service.GradeSubmission(*actor, assignmentID, studentID, input.Grade, input.Feedback)
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.GradesTotal.Inc()
	logger.Info.Printf("Assignment %s graded for student %s by %s", assignmentID, studentID, actor.Email)
	writeJSON(w, http.StatusOK, sub)
}
