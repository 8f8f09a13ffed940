package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/semla/internal/models"
)

var (
	// ErrNotFound means the targeted row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique constraint rejected the write, e.g. a
	// duplicate unit code or an upsert refused by the graded-row guard.
	ErrConflict = errors.New("already exists")
)

type PortalStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateUser(user *models.User) error
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserRole(userID string) (string, error)
	SetUserRole(userID, role string) error
	ListUserAccounts() ([]models.UserAccount, error)

	CreateUnit(unit *models.Unit) error
	GetUnit(id string) (*models.Unit, error)
	GetUnitByCode(code string) (*models.Unit, error)
	ListUnits() ([]models.Unit, error)
	ListUnitsByCreator(teacherID string) ([]models.Unit, error)
	ToggleRegistration(unitID, studentID string) (bool, error)
	ListRegistrations(studentID string) ([]models.UnitRegistration, error)

	CreateAssignment(assignment *models.Assignment) error
	GetAssignment(id string) (*models.Assignment, error)
	ListAssignments() ([]models.Assignment, error)
	ListAssignmentsByCreator(teacherID string) ([]models.Assignment, error)

	UpsertSubmission(sub *models.Submission) error
	GetSubmission(assignmentID, studentID string) (*models.Submission, error)
	ListSubmissionsByAssignment(assignmentID string) ([]SubmissionWithStudent, error)
	ListSubmissionsByStudent(studentID string) ([]SubmissionWithAssignment, error)
	ListSubmissionsByCreator(teacherID string) ([]SubmissionWithAssignment, error)
	ListAllSubmissions() ([]SubmissionWithAssignment, error)
	ListSubmissionsForUnit(unitID string) ([]GradeExportRow, error)
	GradeSubmission(assignmentID, studentID, grade, feedback string) error

	FetchDashboardStats() (*DashboardStats, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
	// IsConflict reports whether err is the dialect's unique violation
	IsConflict func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

// CreateUser inserts the user together with their default student role row,
// in one transaction: exactly one role row per user at all times.
func (s *BaseStore) CreateUser(user *models.User) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`
		INSERT INTO users (id, email, full_name, created_at)
		VALUES (:id, :email, :full_name, :created_at)
	`, user)
	if err != nil {
		if s.IsConflict(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.Exec(s.Converter(`
		INSERT INTO user_roles (user_id, role) VALUES (?, ?)
	`), user.ID, models.RoleStudent)
	if err != nil {
		return fmt.Errorf("failed to create role row: %w", err)
	}

	return tx.Commit()
}

func (s *BaseStore) GetUser(id string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, email, full_name, created_at
		FROM users
		WHERE id = ?
	`)

	err := s.DB.Get(&user, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, email, full_name, created_at
		FROM users
		WHERE email = ?
	`)

	err := s.DB.Get(&user, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) GetUserRole(userID string) (string, error) {
	var role string
	query := s.Converter(`
		SELECT role FROM user_roles WHERE user_id = ?
	`)

	err := s.DB.Get(&role, query, userID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("role for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// SetUserRole mutates the single role row in place; it never inserts,
// so a missing user surfaces as ErrNotFound instead of a second row.
func (s *BaseStore) SetUserRole(userID, role string) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	res, err := s.DB.Exec(s.Converter(`
		UPDATE user_roles SET role = ? WHERE user_id = ?
	`), role, userID)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("role for user %s: %w", userID, ErrNotFound)
	}
	return nil
}

func (s *BaseStore) ListUserAccounts() ([]models.UserAccount, error) {
	var accounts []models.UserAccount
	err := s.DB.Select(&accounts, `
		SELECT u.id, u.email, u.full_name, u.created_at, r.role
		FROM users u
		JOIN user_roles r ON r.user_id = u.id
		ORDER BY u.created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user accounts: %w", err)
	}
	return accounts, nil
}

func (s *BaseStore) CreateUnit(unit *models.Unit) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO units (id, code, name, description, created_by, created_at)
		VALUES (:id, :code, :name, :description, :created_by, :created_at)
	`, unit)
	if err != nil {
		if s.IsConflict(err) {
			return fmt.Errorf("unit code %s: %w", unit.Code, ErrConflict)
		}
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

func (s *BaseStore) GetUnit(id string) (*models.Unit, error) {
	var unit models.Unit
	query := s.Converter(`
		SELECT id, code, name, description, created_by, created_at
		FROM units
		WHERE id = ?
	`)

	err := s.DB.Get(&unit, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return &unit, nil
}

func (s *BaseStore) GetUnitByCode(code string) (*models.Unit, error) {
	var unit models.Unit
	query := s.Converter(`
		SELECT id, code, name, description, created_by, created_at
		FROM units
		WHERE code = ?
	`)

	err := s.DB.Get(&unit, query, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit by code: %w", err)
	}
	return &unit, nil
}

func (s *BaseStore) ListUnits() ([]models.Unit, error) {
	var units []models.Unit
	err := s.DB.Select(&units, `
		SELECT id, code, name, description, created_by, created_at
		FROM units
		ORDER BY code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

func (s *BaseStore) ListUnitsByCreator(teacherID string) ([]models.Unit, error) {
	var units []models.Unit
	query := s.Converter(`
		SELECT id, code, name, description, created_by, created_at
		FROM units
		WHERE created_by = ?
		ORDER BY code ASC
	`)

	err := s.DB.Select(&units, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units by creator: %w", err)
	}
	return units, nil
}

// ToggleRegistration flips membership for (unit, student) and reports the
// resulting state. DELETE-then-INSERT with the composite primary key keeps
// concurrent toggles from ever producing duplicate rows.
func (s *BaseStore) ToggleRegistration(unitID, studentID string) (bool, error) {
	res, err := s.DB.Exec(s.Converter(`
		DELETE FROM unit_registrations
		WHERE unit_id = ? AND student_id = ?
	`), unitID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to unregister: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	_, err = s.DB.Exec(s.Converter(`
		INSERT INTO unit_registrations (unit_id, student_id)
		VALUES (?, ?)
		ON CONFLICT (unit_id, student_id) DO NOTHING
	`), unitID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to register: %w", err)
	}
	return true, nil
}

func (s *BaseStore) ListRegistrations(studentID string) ([]models.UnitRegistration, error) {
	var regs []models.UnitRegistration
	query := s.Converter(`
		SELECT unit_id, student_id
		FROM unit_registrations
		WHERE student_id = ?
		ORDER BY unit_id ASC
	`)

	err := s.DB.Select(&regs, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return regs, nil
}

func (s *BaseStore) CreateAssignment(assignment *models.Assignment) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO assignments (id, unit_id, title, description, requirements, due_date, created_by, created_at)
		VALUES (:id, :unit_id, :title, :description, :requirements, :due_date, :created_by, :created_at)
	`, assignment)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (s *BaseStore) GetAssignment(id string) (*models.Assignment, error) {
	var assignment models.Assignment
	query := s.Converter(`
		SELECT id, unit_id, title, description, requirements, due_date, created_by, created_at
		FROM assignments
		WHERE id = ?
	`)

	err := s.DB.Get(&assignment, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &assignment, nil
}

func (s *BaseStore) ListAssignments() ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.DB.Select(&assignments, `
		SELECT id, unit_id, title, description, requirements, due_date, created_by, created_at
		FROM assignments
		ORDER BY due_date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *BaseStore) ListAssignmentsByCreator(teacherID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	query := s.Converter(`
		SELECT id, unit_id, title, description, requirements, due_date, created_by, created_at
		FROM assignments
		WHERE created_by = ?
		ORDER BY due_date ASC
	`)

	err := s.DB.Select(&assignments, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments by creator: %w", err)
	}
	return assignments, nil
}

// UpsertSubmission inserts or replaces the single row for
// (assignment_id, student_id). The conflict clause refuses to touch rows
// that are already graded, so a re-upload can never clobber a grade even
// when two requests race past the service-level check.
func (s *BaseStore) UpsertSubmission(sub *models.Submission) error {
	res, err := s.DB.NamedExec(`
		INSERT INTO submissions (id, assignment_id, student_id, file_url, file_name, status, grade, feedback, submission_date)
		VALUES (:id, :assignment_id, :student_id, :file_url, :file_name, 'submitted', '', '', :submission_date)
		ON CONFLICT (assignment_id, student_id) DO UPDATE SET
			file_url = excluded.file_url,
			file_name = excluded.file_name,
			submission_date = excluded.submission_date,
			status = 'submitted'
		WHERE submissions.status <> 'graded'
	`, sub)
	if err != nil {
		return fmt.Errorf("failed to upsert submission: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("submission is already graded: %w", ErrConflict)
	}
	return nil
}

func (s *BaseStore) GetSubmission(assignmentID, studentID string) (*models.Submission, error) {
	var sub models.Submission
	query := s.Converter(`
		SELECT id, assignment_id, student_id, file_url, file_name, status, grade, feedback, submission_date
		FROM submissions
		WHERE assignment_id = ? AND student_id = ?
	`)

	err := s.DB.Get(&sub, query, assignmentID, studentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &sub, nil
}

func (s *BaseStore) ListSubmissionsByAssignment(assignmentID string) ([]SubmissionWithStudent, error) {
	var subs []SubmissionWithStudent
	query := s.Converter(`
		SELECT
			s.id, s.assignment_id, s.student_id,
			s.file_url, s.file_name, s.status, s.grade, s.feedback, s.submission_date,
			u.full_name AS student_name,
			u.email AS student_email
		FROM submissions s
		JOIN users u ON u.id = s.student_id
		WHERE s.assignment_id = ?
		ORDER BY s.submission_date DESC
	`)

	err := s.DB.Select(&subs, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

func (s *BaseStore) ListSubmissionsByStudent(studentID string) ([]SubmissionWithAssignment, error) {
	var subs []SubmissionWithAssignment
	query := s.Converter(`
		SELECT
			s.id, s.assignment_id, s.student_id,
			s.file_url, s.file_name, s.status, s.grade, s.feedback, s.submission_date,
			a.title AS assignment_title,
			a.due_date AS assignment_due_date
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		WHERE s.student_id = ?
		ORDER BY s.submission_date DESC
	`)

	err := s.DB.Select(&subs, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions by student: %w", err)
	}
	return subs, nil
}

func (s *BaseStore) ListSubmissionsByCreator(teacherID string) ([]SubmissionWithAssignment, error) {
	var subs []SubmissionWithAssignment
	query := s.Converter(`
		SELECT
			s.id, s.assignment_id, s.student_id,
			s.file_url, s.file_name, s.status, s.grade, s.feedback, s.submission_date,
			a.title AS assignment_title,
			a.due_date AS assignment_due_date
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		WHERE a.created_by = ?
		ORDER BY s.submission_date DESC
	`)

	err := s.DB.Select(&subs, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions by creator: %w", err)
	}
	return subs, nil
}

func (s *BaseStore) ListAllSubmissions() ([]SubmissionWithAssignment, error) {
	var subs []SubmissionWithAssignment
	err := s.DB.Select(&subs, `
		SELECT
			s.id, s.assignment_id, s.student_id,
			s.file_url, s.file_name, s.status, s.grade, s.feedback, s.submission_date,
			a.title AS assignment_title,
			a.due_date AS assignment_due_date
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		ORDER BY s.submission_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

func (s *BaseStore) ListSubmissionsForUnit(unitID string) ([]GradeExportRow, error) {
	var rows []GradeExportRow
	query := s.Converter(`
		SELECT
			u.email AS student_email,
			a.title AS assignment_title,
			s.status,
			s.grade
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		JOIN users u ON u.id = s.student_id
		WHERE a.unit_id = ?
		ORDER BY u.email ASC, a.due_date ASC
	`)

	err := s.DB.Select(&rows, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for unit: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) GradeSubmission(assignmentID, studentID, grade, feedback string) error {
	res, err := s.DB.Exec(s.Converter(`
		UPDATE submissions
		SET grade = ?, feedback = ?, status = 'graded'
		WHERE assignment_id = ? AND student_id = ?
	`), grade, feedback, assignmentID, studentID)
	if err != nil {
		return fmt.Errorf("failed to grade submission: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("submission for assignment %s: %w", assignmentID, ErrNotFound)
	}
	return nil
}

// FetchDashboardStats runs count-only queries, no row materialization.
func (s *BaseStore) FetchDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats
	if err := s.DB.Get(&stats.Users, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := s.DB.Get(&stats.Assignments, `SELECT COUNT(*) FROM assignments`); err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	if err := s.DB.Get(&stats.Submissions, `SELECT COUNT(*) FROM submissions`); err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	return &stats, nil
}
