package api

import (
	"net/http"

	"github.com/nijaru/summora/models"
	"github.com/nijaru/summora/services/summary"
	"github.com/nijaru/summora/validation"
)

type SummaryHandler struct {
	service   summary.Service
	validator *validation.Validator
}

type createSummaryRequest struct {
	Transcript string `json:"transcript"`
	VideoTitle string `json:"videoTitle,omitempty"`
}

type testKeyRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
}

func NewSummaryHandler(service summary.Service, validator *validation.Validator) *SummaryHandler {
	return &SummaryHandler{service: service, validator: validator}
}

// HandleCreateSummary handles POST /api/v1/summary
func (h *SummaryHandler) HandleCreateSummary(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: maxBodyBytes,
		RequireJSON:      true,
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var req createSummaryRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.service.Summarize(r.Context(), req.Transcript, req.VideoTitle)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, result)
}

// HandleTestAPIKey handles POST /api/v1/keys/test
func (h *SummaryHandler) HandleTestAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: 64 << 10,
		RequireJSON:      true,
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var req testKeyRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.service.TestAPIKey(r.Context(), models.ProviderName(req.Provider), req.APIKey); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.KeyTestResult{Success: true})
}
