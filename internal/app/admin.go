package app

import (
	"fmt"

	"github.com/shrimpsizemoose/semla/internal/authz"
	"github.com/shrimpsizemoose/semla/internal/models"
	"github.com/shrimpsizemoose/semla/internal/store"
)

// PromoteUser flips a student to teacher. Admin accounts are managed out
// of band, so they are never a promotion target.
func (s *Service) PromoteUser(actor models.Identity, userID string) error {
	if err := authz.Authorize(actor, authz.RolePromote, nil); err != nil {
		return err
	}
	return s.changeRole(actor, authz.RolePromote, userID, models.RoleStudent, models.RoleTeacher)
}

// DemoteUser flips a teacher back to student. Their units, assignments and
// grades stay untouched.
func (s *Service) DemoteUser(actor models.Identity, userID string) error {
	if err := authz.Authorize(actor, authz.RoleDemote, nil); err != nil {
		return err
	}
	return s.changeRole(actor, authz.RoleDemote, userID, models.RoleTeacher, models.RoleStudent)
}

func (s *Service) changeRole(actor models.Identity, action authz.Action, userID, from, to string) error {
	current, err := s.Store.GetUserRole(userID)
	if err != nil {
		return err
	}
	if current == models.RoleAdmin {
		return &authz.DenialError{Role: actor.Role, Action: action, Reason: "admin accounts cannot change role"}
	}
	if current != from {
		return fmt.Errorf("%w: user %s has role %s, expected %s", ErrValidation, userID, current, from)
	}
	return s.Store.SetUserRole(userID, to)
}

func (s *Service) ListUsers(actor models.Identity) ([]models.UserAccount, error) {
	if err := authz.Authorize(actor, authz.UserList, nil); err != nil {
		return nil, err
	}
	return s.Store.ListUserAccounts()
}

func (s *Service) DashboardStats(actor models.Identity) (*store.DashboardStats, error) {
	if err := authz.Authorize(actor, authz.StatsView, nil); err != nil {
		return nil, err
	}
	return s.Store.FetchDashboardStats()
}
