package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/semla/internal/authz"
	"github.com/shrimpsizemoose/semla/internal/files"
	"github.com/shrimpsizemoose/semla/internal/grading"
	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

// FileUpload is a submission payload as it arrives off the wire. Size is
// checked against the configured ceiling before any bytes move.
type FileUpload struct {
	Name string
	Size int64
	Data io.Reader
}

func (s *Service) validateUpload(up FileUpload) error {
	if up.Name == "" || up.Data == nil {
		return fmt.Errorf("%w: a file is required", ErrValidation)
	}
	if up.Size > s.Config.Uploads.MaxFileBytes {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, s.Config.Uploads.MaxFileBytes)
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(up.Name)), ".")
	for _, allowed := range s.Config.Uploads.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: file type .%s is not accepted", ErrValidation, ext)
}

// SubmitAssignment uploads the file and upserts the single submission row
// for (assignment, student). Re-submitting replaces the previous upload
// unless the work is already graded. Deadlines do not block uploads, the
// teacher sees the timestamp and judges lateness themselves.
func (s *Service) SubmitAssignment(ctx context.Context, actor models.Identity, assignmentID string, up FileUpload) (*models.Submission, error) {
	err := authz.Authorize(actor, authz.SubmissionCreate, &authz.Resource{StudentID: actor.UserID})
	if err != nil {
		return nil, err
	}

	assignment, err := s.Store.GetAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, fmt.Errorf("%w: assignment %s does not exist", ErrValidation, assignmentID)
	}

	if err := s.validateUpload(up); err != nil {
		return nil, err
	}

	existing, err := s.Store.GetSubmission(assignmentID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := grading.CanReplace(existing); err != nil {
		return nil, err
	}

	if s.Files == nil {
		return nil, fmt.Errorf("file storage is not configured")
	}

	now := time.Now()
	key := files.ObjectKey(actor.UserID, assignmentID, up.Name, now.UnixMilli())
	fileURL, err := s.Files.Upload(ctx, key, up.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	sub := &models.Submission{
		ID:             uuid.NewString(),
		AssignmentID:   assignmentID,
		StudentID:      actor.UserID,
		FileURL:        fileURL,
		FileName:       up.Name,
		Status:         models.StatusSubmitted,
		SubmissionDate: now.Unix(),
	}
	if err := s.Store.UpsertSubmission(sub); err != nil {
		return nil, err
	}

	return s.Store.GetSubmission(assignmentID, actor.UserID)
}

func (s *Service) ListSubmissionsForAssignment(actor models.Identity, assignmentID string) ([]store.SubmissionWithStudent, error) {
	assignment, err := s.Store.GetAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, store.ErrNotFound)
	}

	res := &authz.Resource{OwnerID: assignment.CreatedBy}
	if err := authz.Authorize(actor, authz.SubmissionList, res); err != nil {
		return nil, err
	}

	return s.Store.ListSubmissionsByAssignment(assignmentID)
}

// ListSubmissions is the actor's personal submissions board: a student sees
// their own uploads, a teacher everything submitted to their assignments,
// an admin the whole portal.
func (s *Service) ListSubmissions(actor models.Identity) ([]store.SubmissionWithAssignment, error) {
	switch actor.Role {
	case models.RoleStudent:
		res := &authz.Resource{StudentID: actor.UserID}
		if err := authz.Authorize(actor, authz.SubmissionList, res); err != nil {
			return nil, err
		}
		return s.Store.ListSubmissionsByStudent(actor.UserID)

	case models.RoleTeacher:
		res := &authz.Resource{OwnerID: actor.UserID}
		if err := authz.Authorize(actor, authz.SubmissionList, res); err != nil {
			return nil, err
		}
		return s.Store.ListSubmissionsByCreator(actor.UserID)

	case models.RoleAdmin:
		if err := authz.Authorize(actor, authz.SubmissionList, nil); err != nil {
			return nil, err
		}
		return s.Store.ListAllSubmissions()
	}

	return nil, &authz.DenialError{Role: actor.Role, Action: authz.SubmissionList, Reason: "unknown role"}
}

func (s *Service) GradeSubmission(actor models.Identity, assignmentID, studentID, grade, feedback string) (*models.Submission, error) {
	assignment, err := s.Store.GetAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, store.ErrNotFound)
	}

	res := &authz.Resource{OwnerID: assignment.CreatedBy}
	if err := authz.Authorize(actor, authz.SubmissionGrade, res); err != nil {
		return nil, err
	}

	if err := grading.ValidateGrade(grade); err != nil {
		return nil, err
	}

	if err := s.Store.GradeSubmission(assignmentID, studentID, strings.TrimSpace(grade), feedback); err != nil {
		return nil, err
	}

	return s.Store.GetSubmission(assignmentID, studentID)
}
