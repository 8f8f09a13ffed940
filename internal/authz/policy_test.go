package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/semla/internal/models"
)

var (
	student = models.Identity{UserID: "stu-1", Role: models.RoleStudent}
	teacher = models.Identity{UserID: "tea-1", Role: models.RoleTeacher}
	admin   = models.Identity{UserID: "adm-1", Role: models.RoleAdmin}
)

func TestAuthorize_Creation(t *testing.T) {
	t.Run("teacher and admin create units and assignments", func(t *testing.T) {
		assert.NoError(t, Authorize(teacher, UnitCreate, nil))
		assert.NoError(t, Authorize(admin, UnitCreate, nil))
		assert.NoError(t, Authorize(teacher, AssignmentCreate, nil))
		assert.NoError(t, Authorize(admin, AssignmentCreate, nil))
	})

	t.Run("student denied with reason", func(t *testing.T) {
		err := Authorize(student, UnitCreate, nil)
		require.Error(t, err)

		var denial *DenialError
		require.True(t, errors.As(err, &denial))
		assert.Equal(t, models.RoleStudent, denial.Role)
		assert.Equal(t, UnitCreate, denial.Action)
		assert.Contains(t, err.Error(), "forbidden: role student")
	})
}

func TestAuthorize_Registration(t *testing.T) {
	t.Run("student toggles own registration", func(t *testing.T) {
		err := Authorize(student, UnitRegister, &Resource{StudentID: student.UserID})
		assert.NoError(t, err)
	})

	t.Run("student cannot toggle for someone else", func(t *testing.T) {
		err := Authorize(student, UnitRegister, &Resource{StudentID: "stu-2"})
		assert.Error(t, err)
	})

	t.Run("teachers and admins never register", func(t *testing.T) {
		assert.Error(t, Authorize(teacher, UnitRegister, &Resource{StudentID: teacher.UserID}))
		assert.Error(t, Authorize(admin, UnitRegister, &Resource{StudentID: admin.UserID}))
	})
}

func TestAuthorize_Submissions(t *testing.T) {
	t.Run("student submits own work only", func(t *testing.T) {
		assert.NoError(t, Authorize(student, SubmissionCreate, &Resource{StudentID: student.UserID}))
		assert.Error(t, Authorize(student, SubmissionCreate, &Resource{StudentID: "stu-2"}))
	})

	t.Run("teacher lists and grades own assignments only", func(t *testing.T) {
		own := &Resource{OwnerID: teacher.UserID}
		foreign := &Resource{OwnerID: "tea-2"}

		assert.NoError(t, Authorize(teacher, SubmissionList, own))
		assert.NoError(t, Authorize(teacher, SubmissionGrade, own))
		assert.Error(t, Authorize(teacher, SubmissionList, foreign))
		assert.Error(t, Authorize(teacher, SubmissionGrade, foreign))
	})

	t.Run("admin lists and grades anything", func(t *testing.T) {
		foreign := &Resource{OwnerID: "tea-2"}
		assert.NoError(t, Authorize(admin, SubmissionList, foreign))
		assert.NoError(t, Authorize(admin, SubmissionGrade, foreign))
	})

	t.Run("student lists own submissions only", func(t *testing.T) {
		assert.NoError(t, Authorize(student, SubmissionList, &Resource{StudentID: student.UserID}))
		assert.Error(t, Authorize(student, SubmissionList, &Resource{OwnerID: "tea-1"}))
		assert.Error(t, Authorize(student, SubmissionGrade, &Resource{StudentID: student.UserID}))
	})
}

func TestAuthorize_AdminOnly(t *testing.T) {
	for _, action := range []Action{RolePromote, RoleDemote, UserCreate, UserList, StatsView} {
		assert.NoError(t, Authorize(admin, action, nil), "admin should perform %s", action)
		assert.Error(t, Authorize(teacher, action, nil), "teacher should not perform %s", action)
		assert.Error(t, Authorize(student, action, nil), "student should not perform %s", action)
	}
}

func TestAuthorize_UnknownAction(t *testing.T) {
	err := Authorize(admin, Action("submission.delete"), nil)
	assert.Error(t, err)
}
