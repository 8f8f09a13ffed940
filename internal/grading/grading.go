package grading

import (
	"errors"
	"strings"

	"github.com/shrimpsizemoose/semla/internal/models"
)

var (
	// ErrAlreadyGraded blocks re-uploads once a grade is recorded.
	ErrAlreadyGraded = errors.New("submission already graded")
	// ErrEmptyGrade rejects a grading attempt without a grade value.
	ErrEmptyGrade = errors.New("grade must not be empty")
)

// CanReplace decides whether a new upload may take the place of the
// existing submission row. No row and a submitted row both accept the
// upload; a graded row refuses it so a grade is never silently orphaned
// from the file it was given for.
func CanReplace(existing *models.Submission) error {
	if existing != nil && existing.Status == models.StatusGraded {
		return ErrAlreadyGraded
	}
	return nil
}

// ValidateGrade checks the grade label before any write. Grades are
// free-form labels ("A+", "95%", "Pass"), required non-empty; feedback
// is optional and not validated here.
func ValidateGrade(grade string) error {
	if strings.TrimSpace(grade) == "" {
		return ErrEmptyGrade
	}
	return nil
}

// DisplayStatus derives the status a student sees for an assignment:
// the absence of a submission row is the pending state.
func DisplayStatus(sub *models.Submission) string {
	if sub == nil {
		return models.StatusPending
	}
	return sub.Status
}
