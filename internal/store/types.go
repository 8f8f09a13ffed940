package store

import "github.com/shrimpsizemoose/semla/internal/models"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

type DashboardStats struct {
	Users       int64 `json:"users"`
	Assignments int64 `json:"assignments"`
	Submissions int64 `json:"submissions"`
}

// SubmissionWithStudent is the teacher-facing view of a submission row.
type SubmissionWithStudent struct {
	models.Submission
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
}

// SubmissionWithAssignment is the student-facing view of a submission row.
type SubmissionWithAssignment struct {
	models.Submission
	AssignmentTitle   string `db:"assignment_title" json:"assignment_title"`
	AssignmentDueDate int64  `db:"assignment_due_date" json:"assignment_due_date"`
}

type GradeExportRow struct {
	StudentEmail    string `db:"student_email"`
	AssignmentTitle string `db:"assignment_title"`
	Status          string `db:"status"`
	Grade           string `db:"grade"`
}
