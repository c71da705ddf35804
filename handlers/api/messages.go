package api

import (
	"net/http"

	"github.com/nijaru/summora/services/messaging"
	"github.com/nijaru/summora/utils"
	"github.com/nijaru/summora/validation"
)

// MessageHandler exposes the message router. Responses are the bare result
// objects, not the REST envelope, and always use status 200.
type MessageHandler struct {
	router    *messaging.Router
	validator *validation.Validator
}

func NewMessageHandler(router *messaging.Router, validator *validation.Validator) *MessageHandler {
	return &MessageHandler{router: router, validator: validator}
}

// HandleMessage handles POST /api/v1/messages
func (h *MessageHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: maxBodyBytes,
		RequireJSON:      true,
	}); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	var msg messaging.Message
	if err := readJSON(r, &msg); err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, h.router.Handle(r.Context(), msg))
}
