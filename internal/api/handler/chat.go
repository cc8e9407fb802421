package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/vittamhq/loan-widget/internal/api/response"
	"github.com/vittamhq/loan-widget/internal/assist"
	"github.com/vittamhq/loan-widget/internal/domain"
)

// ChatHandler handles chat turns
type ChatHandler struct {
	assist *assist.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(assistService *assist.Service) *ChatHandler {
	return &ChatHandler{assist: assistService}
}

type chatRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required,max=4000"`
}

// Send runs one chat turn and returns the assistant reply
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var input chatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	reply, err := h.assist.HandleMessage(r.Context(), input.SessionID, input.Message)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to process message")
		return
	}

	response.OK(w, reply)
}

// validationErrors flattens validator errors into a field -> message map.
func validationErrors(err error) any {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	errors := make(map[string]string)
	for _, e := range validationErrs {
		switch e.Tag() {
		case "required":
			errors[e.Field()] = "field is required"
		case "max":
			errors[e.Field()] = "must be at most " + e.Param() + " characters"
		default:
			errors[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return errors
}
