package authz

import (
	"fmt"

	"github.com/shrimpsizemoose/semla/internal/models"
)

type Action string

const (
	UnitCreate       Action = "unit.create"
	UnitList         Action = "unit.list"
	UnitRegister     Action = "unit.register"
	AssignmentCreate Action = "assignment.create"
	AssignmentList   Action = "assignment.list"
	AssignmentView   Action = "assignment.view"
	SubmissionCreate Action = "submission.create"
	SubmissionList   Action = "submission.list"
	SubmissionGrade  Action = "submission.grade"
	RolePromote      Action = "role.promote"
	RoleDemote       Action = "role.demote"
	UserCreate       Action = "user.create"
	UserList         Action = "user.list"
	StatsView        Action = "stats.view"
)

// Resource carries the ownership facts the policy needs. nil means the
// action has no per-row scope.
type Resource struct {
	OwnerID   string // created_by of a unit or assignment
	StudentID string // student a registration or submission belongs to
}

// DenialError carries a reason usable for a user-facing message.
type DenialError struct {
	Role   string
	Action Action
	Reason string
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("forbidden: role %s cannot perform %s (%s)", e.Role, e.Action, e.Reason)
}

func deny(actor models.Identity, action Action, reason string) *DenialError {
	return &DenialError{Role: actor.Role, Action: action, Reason: reason}
}

// Authorize is the single policy table consulted by every operation. Role
// checks live here and nowhere else, so no screen can drift from another.
func Authorize(actor models.Identity, action Action, res *Resource) error {
	switch action {
	case UnitCreate, AssignmentCreate:
		if actor.Role == models.RoleTeacher || actor.Role == models.RoleAdmin {
			return nil
		}
		return deny(actor, action, "teacher or admin required")

	case UnitList, AssignmentList, AssignmentView:
		// any authenticated role; creator scoping happens in the query
		return nil

	case UnitRegister, SubmissionCreate:
		if actor.Role != models.RoleStudent {
			return deny(actor, action, "students only")
		}
		if res == nil || res.StudentID != actor.UserID {
			return deny(actor, action, "own records only")
		}
		return nil

	case SubmissionList, SubmissionGrade:
		switch actor.Role {
		case models.RoleAdmin:
			return nil
		case models.RoleTeacher:
			if res == nil || res.OwnerID != actor.UserID {
				return deny(actor, action, "own assignments only")
			}
			return nil
		case models.RoleStudent:
			if action == SubmissionList && res != nil && res.StudentID == actor.UserID {
				return nil
			}
		}
		return deny(actor, action, "teacher or admin required")

	case RolePromote, RoleDemote, UserCreate, UserList, StatsView:
		if actor.Role != models.RoleAdmin {
			return deny(actor, action, "admin required")
		}
		return nil
	}

	return deny(actor, action, "unknown action")
}
