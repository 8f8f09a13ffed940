package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/semla/internal/authz"
	"github.com/shrimpsizemoose/semla/internal/grading"
	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

type AssignmentInput struct {
	UnitID       string `json:"unit_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	DueDate      int64  `json:"due_date"`
}

// AssignmentDetail is the role-shaped detail view: students get their own
// submission state, teachers and admins get the full submission list.
type AssignmentDetail struct {
	Assignment   *models.Assignment            `json:"assignment"`
	PastDue      bool                          `json:"past_due"`
	MyStatus     string                        `json:"my_status,omitempty"`
	MySubmission *models.Submission            `json:"my_submission,omitempty"`
	Submissions  []store.SubmissionWithStudent `json:"submissions,omitempty"`
}

func (s *Service) CreateAssignment(actor models.Identity, input AssignmentInput) (*models.Assignment, error) {
	if err := authz.Authorize(actor, authz.AssignmentCreate, nil); err != nil {
		return nil, err
	}

	unit, err := s.Store.GetUnit(input.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("%w: unit %s does not exist", ErrValidation, input.UnitID)
	}

	assignment := &models.Assignment{
		ID:           uuid.NewString(),
		UnitID:       input.UnitID,
		Title:        input.Title,
		Description:  input.Description,
		Requirements: input.Requirements,
		DueDate:      input.DueDate,
		CreatedBy:    actor.UserID,
		CreatedAt:    time.Now().Unix(),
	}
	if err := assignment.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.Store.CreateAssignment(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ListAssignments scopes the list like ListUnits does: teachers see their
// own assignments, students and admins see the full board.
func (s *Service) ListAssignments(actor models.Identity) ([]models.Assignment, error) {
	if err := authz.Authorize(actor, authz.AssignmentList, nil); err != nil {
		return nil, err
	}

	if actor.Role == models.RoleTeacher {
		return s.Store.ListAssignmentsByCreator(actor.UserID)
	}
	return s.Store.ListAssignments()
}

func (s *Service) GetAssignmentDetail(actor models.Identity, assignmentID string) (*AssignmentDetail, error) {
	if err := authz.Authorize(actor, authz.AssignmentView, nil); err != nil {
		return nil, err
	}

	assignment, err := s.Store.GetAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, store.ErrNotFound)
	}

	detail := &AssignmentDetail{
		Assignment: assignment,
		PastDue:    assignment.PastDue(time.Now().Unix()),
	}

	if actor.Role == models.RoleStudent {
		sub, err := s.Store.GetSubmission(assignmentID, actor.UserID)
		if err != nil {
			return nil, err
		}
		detail.MySubmission = sub
		detail.MyStatus = grading.DisplayStatus(sub)
		return detail, nil
	}

	res := &authz.Resource{OwnerID: assignment.CreatedBy}
	if err := authz.Authorize(actor, authz.SubmissionList, res); err != nil {
		return nil, err
	}
	subs, err := s.Store.ListSubmissionsByAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	detail.Submissions = subs
	return detail, nil
}
