package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	// StatusPending is never stored: it is the absence of a submission row.
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

// Submission is keyed by (assignment_id, student_id): a re-upload by the
// same student updates the row in place, it never creates a second one.
type Submission struct {
	ID             string `db:"id" json:"id"`
	AssignmentID   string `db:"assignment_id" json:"assignment_id" validate:"required"`
	StudentID      string `db:"student_id" json:"student_id" validate:"required"`
	FileURL        string `db:"file_url" json:"file_url"`
	FileName       string `db:"file_name" json:"file_name" validate:"required"`
	Status         string `db:"status" json:"status"`
	Grade          string `db:"grade" json:"grade"`
	Feedback       string `db:"feedback" json:"feedback"`
	SubmissionDate int64  `db:"submission_date" json:"submission_date"`
}

func (s *Submission) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}
