package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

type Unit struct {
	ID          string `db:"id" json:"id"`
	Code        string `db:"code" json:"code" validate:"required,max=16"`
	Name        string `db:"name" json:"name" validate:"required"`
	Description string `db:"description" json:"description"`
	CreatedBy   string `db:"created_by" json:"created_by"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
}

// NormalizeCode uppercases the unit code so that uniqueness is
// case-insensitive ("cs101" and "CS101" are the same unit).
func (u *Unit) NormalizeCode() {
	u.Code = strings.ToUpper(strings.TrimSpace(u.Code))
}

func (u *Unit) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}

type UnitRegistration struct {
	UnitID    string `db:"unit_id" json:"unit_id"`
	StudentID string `db:"student_id" json:"student_id"`
}
