package models

import (
	"github.com/go-playground/validator/v10"
)

type Assignment struct {
	ID           string `db:"id" json:"id"`
	UnitID       string `db:"unit_id" json:"unit_id" validate:"required"`
	Title        string `db:"title" json:"title" validate:"required"`
	Description  string `db:"description" json:"description"`
	Requirements string `db:"requirements" json:"requirements"`
	DueDate      int64  `db:"due_date" json:"due_date" validate:"required"`
	CreatedBy    string `db:"created_by" json:"created_by"`
	CreatedAt    int64  `db:"created_at" json:"created_at"`
}

// PastDue is recomputed at read time, never stored. Due dates are advisory:
// a past-due assignment still accepts submissions.
func (a *Assignment) PastDue(now int64) bool {
	return a.DueDate < now
}

func (a *Assignment) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}
