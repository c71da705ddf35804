package api

import (
	"net/http"

	"github.com/nijaru/summora/models"
	"github.com/nijaru/summora/services/summary"
	"github.com/nijaru/summora/validation"
)

type SettingsHandler struct {
	service   summary.Service
	validator *validation.Validator
}

func NewSettingsHandler(service summary.Service, validator *validation.Validator) *SettingsHandler {
	return &SettingsHandler{service: service, validator: validator}
}

// HandleGetSettings handles GET /api/v1/settings. Keys are masked.
func (h *SettingsHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, settings)
}

// HandleUpdateSettings handles PUT /api/v1/settings. Empty fields leave the
// stored value unchanged.
func (h *SettingsHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: 64 << 10,
		RequireJSON:      true,
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var update models.Settings
	if err := readJSON(r, &update); err != nil {
		respondError(w, r, err)
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), update)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, settings)
}
