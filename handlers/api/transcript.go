package api

import (
	"net/http"

	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/services/messaging"
	"github.com/nijaru/summora/validation"
)

type TranscriptHandler struct {
	service   messaging.TranscriptFetcher
	validator *validation.Validator
}

type getTranscriptRequest struct {
	URL string `json:"url"`
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
	VideoTitle string `json:"videoTitle"`
	Method     string `json:"method"`
}

func NewTranscriptHandler(service messaging.TranscriptFetcher, validator *validation.Validator) *TranscriptHandler {
	return &TranscriptHandler{service: service, validator: validator}
}

// HandleGetTranscript handles POST /api/v1/transcript
func (h *TranscriptHandler) HandleGetTranscript(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: 64 << 10,
		RequireJSON:      true,
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var req getTranscriptRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	t, err := h.service.GetTranscript(r.Context(), req.URL)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, transcriptResponse{
		Transcript: t.Text,
		VideoTitle: t.VideoTitle,
		Method:     t.Method,
	})
}

// HandleCheckPage handles GET /api/v1/page?url=
func (h *TranscriptHandler) HandleCheckPage(w http.ResponseWriter, r *http.Request) {
	const op = "TranscriptHandler.HandleCheckPage"

	url := r.URL.Query().Get("url")
	if url == "" {
		respondError(w, r, errors.InvalidInput(op, nil, "URL parameter is required"))
		return
	}

	respondJSON(w, r, http.StatusOK, validation.CheckYouTubePage(url))
}
