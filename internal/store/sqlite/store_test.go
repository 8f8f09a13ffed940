package sqlite

import (
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store   *SQLiteStore
	now     time.Time
	student *models.User
	teacher *models.User
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

	student := &models.User{
		ID:        "stu-1",
		Email:     "john.doe@example.edu",
		FullName:  "John Doe",
		CreatedAt: now.Unix(),
	}
	require.NoError(t, s.CreateUser(student))

	teacher := &models.User{
		ID:        "tea-1",
		Email:     "jane.roe@example.edu",
		FullName:  "Jane Roe",
		CreatedAt: now.Unix(),
	}
	require.NoError(t, s.CreateUser(teacher))
	require.NoError(t, s.SetUserRole(teacher.ID, models.RoleTeacher))

	return &testData{
		store:   s,
		now:     now,
		student: student,
		teacher: teacher,
	}, cleanup
}

func (td *testData) makeUnit(t *testing.T, code string) *models.Unit {
	unit := &models.Unit{
		ID:        "unit-" + code,
		Code:      code,
		Name:      "Unit " + code,
		CreatedBy: td.teacher.ID,
		CreatedAt: td.now.Unix(),
	}
	require.NoError(t, td.store.CreateUnit(unit))
	return unit
}

func (td *testData) makeAssignment(t *testing.T, id, unitID string) *models.Assignment {
	assignment := &models.Assignment{
		ID:        id,
		UnitID:    unitID,
		Title:     "Assignment " + id,
		DueDate:   td.now.Add(7 * 24 * time.Hour).Unix(),
		CreatedBy: td.teacher.ID,
		CreatedAt: td.now.Unix(),
	}
	require.NoError(t, td.store.CreateAssignment(assignment))
	return assignment
}

func TestCreateUser(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("new users default to student role", func(t *testing.T) {
		role, err := td.store.GetUserRole(td.student.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleStudent, role)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		dup := &models.User{
			ID:        "stu-2",
			Email:     td.student.Email,
			FullName:  "John Clone",
			CreatedAt: td.now.Unix(),
		}
		err := td.store.CreateUser(dup)
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrConflict))
	})

	t.Run("lookup by email", func(t *testing.T) {
		got, err := td.store.GetUserByEmail(td.teacher.Email)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.teacher.ID, got.ID)
	})

	t.Run("missing user is nil, not an error", func(t *testing.T) {
		got, err := td.store.GetUser("no-such-user")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUserRoles(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("promote and demote round-trip", func(t *testing.T) {
		require.NoError(t, td.store.SetUserRole(td.student.ID, models.RoleTeacher))
		role, err := td.store.GetUserRole(td.student.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleTeacher, role)

		require.NoError(t, td.store.SetUserRole(td.student.ID, models.RoleStudent))
		role, err = td.store.GetUserRole(td.student.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleStudent, role)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		err := td.store.SetUserRole("no-such-user", models.RoleTeacher)
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("accounts listing carries roles", func(t *testing.T) {
		accounts, err := td.store.ListUserAccounts()
		require.NoError(t, err)
		require.Len(t, accounts, 2)

		roles := map[string]string{}
		for _, acc := range accounts {
			roles[acc.ID] = acc.Role
		}
		assert.Equal(t, models.RoleStudent, roles[td.student.ID])
		assert.Equal(t, models.RoleTeacher, roles[td.teacher.ID])
	})
}

func TestUnits(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	unit := td.makeUnit(t, "CS101")

	t.Run("duplicate code is a conflict", func(t *testing.T) {
		dup := &models.Unit{
			ID:        "unit-dup",
			Code:      "CS101",
			Name:      "Imposter",
			CreatedBy: td.teacher.ID,
			CreatedAt: td.now.Unix(),
		}
		err := td.store.CreateUnit(dup)
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrConflict))
	})

	t.Run("lookup by code", func(t *testing.T) {
		got, err := td.store.GetUnitByCode("CS101")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, unit.ID, got.ID)
	})

	t.Run("creator scoping", func(t *testing.T) {
		units, err := td.store.ListUnitsByCreator(td.teacher.ID)
		require.NoError(t, err)
		assert.Len(t, units, 1)

		units, err = td.store.ListUnitsByCreator("someone-else")
		require.NoError(t, err)
		assert.Empty(t, units)
	})
}

func TestToggleRegistration(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	unit := td.makeUnit(t, "CS101")

	registered, err := td.store.ToggleRegistration(unit.ID, td.student.ID)
	require.NoError(t, err)
	assert.True(t, registered, "first toggle registers")

	regs, err := td.store.ListRegistrations(td.student.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, unit.ID, regs[0].UnitID)

	registered, err = td.store.ToggleRegistration(unit.ID, td.student.ID)
	require.NoError(t, err)
	assert.False(t, registered, "second toggle unregisters")

	regs, err = td.store.ListRegistrations(td.student.ID)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestUpsertSubmission(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	unit := td.makeUnit(t, "CS101")
	assignment := td.makeAssignment(t, "a1", unit.ID)

	first := &models.Submission{
		ID:             "sub-1",
		AssignmentID:   assignment.ID,
		StudentID:      td.student.ID,
		FileURL:        "mem://v1.pdf",
		FileName:       "v1.pdf",
		SubmissionDate: td.now.Unix(),
	}
	require.NoError(t, td.store.UpsertSubmission(first))

	t.Run("insert lands as submitted", func(t *testing.T) {
		got, err := td.store.GetSubmission(assignment.ID, td.student.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StatusSubmitted, got.Status)
		assert.Equal(t, "v1.pdf", got.FileName)
	})

	t.Run("re-upload replaces in place", func(t *testing.T) {
		second := &models.Submission{
			ID:             "sub-2",
			AssignmentID:   assignment.ID,
			StudentID:      td.student.ID,
			FileURL:        "mem://v2.pdf",
			FileName:       "v2.pdf",
			SubmissionDate: td.now.Add(time.Hour).Unix(),
		}
		require.NoError(t, td.store.UpsertSubmission(second))

		got, err := td.store.GetSubmission(assignment.ID, td.student.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "v2.pdf", got.FileName)
		assert.Equal(t, "sub-1", got.ID, "row identity survives the replace")

		subs, err := td.store.ListSubmissionsByAssignment(assignment.ID)
		require.NoError(t, err)
		assert.Len(t, subs, 1, "still a single row per (assignment, student)")
	})

	t.Run("graded rows refuse replacement", func(t *testing.T) {
		require.NoError(t, td.store.GradeSubmission(assignment.ID, td.student.ID, "A", "solid work"))

		late := &models.Submission{
			ID:             "sub-3",
			AssignmentID:   assignment.ID,
			StudentID:      td.student.ID,
			FileURL:        "mem://v3.pdf",
			FileName:       "v3.pdf",
			SubmissionDate: td.now.Add(2 * time.Hour).Unix(),
		}
		err := td.store.UpsertSubmission(late)
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrConflict))

		got, err := td.store.GetSubmission(assignment.ID, td.student.ID)
		require.NoError(t, err)
		assert.Equal(t, "v2.pdf", got.FileName, "graded upload stays untouched")
		assert.Equal(t, "A", got.Grade)
	})
}

func TestGradeSubmission(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	unit := td.makeUnit(t, "CS101")
	assignment := td.makeAssignment(t, "a1", unit.ID)

	t.Run("grading without a submission is not found", func(t *testing.T) {
		err := td.store.GradeSubmission(assignment.ID, td.student.ID, "B", "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("grade and feedback land together", func(t *testing.T) {
		sub := &models.Submission{
			ID:             "sub-1",
			AssignmentID:   assignment.ID,
			StudentID:      td.student.ID,
			FileURL:        "mem://v1.pdf",
			FileName:       "v1.pdf",
			SubmissionDate: td.now.Unix(),
		}
		require.NoError(t, td.store.UpsertSubmission(sub))
		require.NoError(t, td.store.GradeSubmission(assignment.ID, td.student.ID, "B+", "late but good"))

		got, err := td.store.GetSubmission(assignment.ID, td.student.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusGraded, got.Status)
		assert.Equal(t, "B+", got.Grade)
		assert.Equal(t, "late but good", got.Feedback)
	})
}

func TestSubmissionListings(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	unit := td.makeUnit(t, "CS101")
	a1 := td.makeAssignment(t, "a1", unit.ID)
	a2 := td.makeAssignment(t, "a2", unit.ID)

	for i, assignment := range []*models.Assignment{a1, a2} {
		sub := &models.Submission{
			ID:             assignment.ID + "-sub",
			AssignmentID:   assignment.ID,
			StudentID:      td.student.ID,
			FileURL:        "mem://work.pdf",
			FileName:       "work.pdf",
			SubmissionDate: td.now.Add(time.Duration(i) * time.Hour).Unix(),
		}
		require.NoError(t, td.store.UpsertSubmission(sub))
	}
	require.NoError(t, td.store.GradeSubmission(a1.ID, td.student.ID, "A", ""))

	t.Run("by student joins assignment titles", func(t *testing.T) {
		subs, err := td.store.ListSubmissionsByStudent(td.student.ID)
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.NotEmpty(t, subs[0].AssignmentTitle)
	})

	t.Run("by creator covers all their assignments", func(t *testing.T) {
		subs, err := td.store.ListSubmissionsByCreator(td.teacher.ID)
		require.NoError(t, err)
		assert.Len(t, subs, 2)

		subs, err = td.store.ListSubmissionsByCreator("someone-else")
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("by assignment joins student identity", func(t *testing.T) {
		subs, err := td.store.ListSubmissionsByAssignment(a1.ID)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, td.student.Email, subs[0].StudentEmail)
		assert.Equal(t, td.student.FullName, subs[0].StudentName)
	})

	t.Run("unit export rows carry grades", func(t *testing.T) {
		rows, err := td.store.ListSubmissionsForUnit(unit.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		grades := map[string]string{}
		for _, row := range rows {
			grades[row.AssignmentTitle] = row.Grade
		}
		assert.Equal(t, "A", grades[a1.Title])
		assert.Equal(t, "", grades[a2.Title])
	})
}

func TestDashboardStats(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	unit := td.makeUnit(t, "CS101")
	assignment := td.makeAssignment(t, "a1", unit.ID)

	sub := &models.Submission{
		ID:             "sub-1",
		AssignmentID:   assignment.ID,
		StudentID:      td.student.ID,
		FileURL:        "mem://work.pdf",
		FileName:       "work.pdf",
		SubmissionDate: td.now.Unix(),
	}
	require.NoError(t, td.store.UpsertSubmission(sub))

	stats, err := td.store.FetchDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(1), stats.Assignments)
	assert.Equal(t, int64(1), stats.Submissions)
}
