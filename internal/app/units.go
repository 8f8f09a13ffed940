package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/semla/internal/authz"
	"github.com/shrimpsizemoose/semla/internal/models"
)

type UnitInput struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Service) CreateUnit(actor models.Identity, input UnitInput) (*models.Unit, error) {
	if err := authz.Authorize(actor, authz.UnitCreate, nil); err != nil {
		return nil, err
	}

	unit := &models.Unit{
		ID:          uuid.NewString(),
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   actor.UserID,
		CreatedAt:   time.Now().Unix(),
	}
	unit.NormalizeCode()

	if err := unit.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.Store.CreateUnit(unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// ListUnits returns the catalogue the actor is allowed to see: teachers see
// the units they created, students and admins see everything.
func (s *Service) ListUnits(actor models.Identity) ([]models.Unit, error) {
	if err := authz.Authorize(actor, authz.UnitList, nil); err != nil {
		return nil, err
	}

	if actor.Role == models.RoleTeacher {
		return s.Store.ListUnitsByCreator(actor.UserID)
	}
	return s.Store.ListUnits()
}

// ToggleRegistration flips the actor's membership in a unit and reports
// the resulting state. Registering twice is a no-op pair, not an error.
func (s *Service) ToggleRegistration(actor models.Identity, unitID string) (bool, error) {
	err := authz.Authorize(actor, authz.UnitRegister, &authz.Resource{StudentID: actor.UserID})
	if err != nil {
		return false, err
	}

	unit, err := s.Store.GetUnit(unitID)
	if err != nil {
		return false, err
	}
	if unit == nil {
		return false, fmt.Errorf("%w: unit %s does not exist", ErrValidation, unitID)
	}

	return s.Store.ToggleRegistration(unitID, actor.UserID)
}

func (s *Service) ListRegistrations(actor models.Identity) ([]models.UnitRegistration, error) {
	return s.Store.ListRegistrations(actor.UserID)
}
