package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
)

type UnitHandler struct {
	service *app.Service
}

func NewUnitHandler(service *app.Service) *UnitHandler {
	return &UnitHandler{
		service: service,
	}
}

func (h *UnitHandler) HandleCreateUnit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/units", start, "POST")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input app.UnitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	unit, err := h.service.CreateUnit(*actor, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Info.Printf("Unit %s created by %s", unit.Code, actor.Email)
	writeJSON(w, http.StatusCreated, unit)
}

func (h *UnitHandler) HandleListUnits(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/units", start, "GET")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	units, err := h.service.ListUnits(*actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"units": units,
	})
}

func (h *UnitHandler) HandleToggleRegistration(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/units/{unit_id}/registration", start, "POST")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	unitID := r.PathValue("unit_id")
	if unitID == "" {
		http.Error(w, "Invalid unit id", http.StatusBadRequest)
		return
	}

	registered, err := h.service.ToggleRegistration(*actor, unitID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unit_id":    unitID,
		"registered": registered,
	})
}

func (h *UnitHandler) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe("/api/v1/registrations", start, "GET")

	actor, err := h.service.Authenticate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	regs, err := h.service.ListRegistrations(*actor)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"registrations": regs,
	})
}
