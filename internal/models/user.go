package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email" validate:"required,email"`
	FullName  string `db:"full_name" json:"full_name"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

// UserAccount is a user joined with their role row. Every user has exactly
// one role row, default student, so the join never drops anyone.
type UserAccount struct {
	User
	Role string `db:"role" json:"role"`
}

// Identity is the resolved actor for a single request. It is passed
// explicitly to every operation instead of living in ambient session state.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (u *User) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}
