package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/leadrelay/backend/internal/model"
	"github.com/leadrelay/backend/internal/service"
)

// maxMessageBodyBytes caps the POST /api/messages body.
const maxMessageBodyBytes = 1 << 20

const messageSaved = "Message saved successfully"

// MessageHandler handles lead submission and listing.
type MessageHandler struct {
	messages service.MessageService
	notifier service.NotificationService
}

// NewMessageHandler creates a MessageHandler with the given services.
func NewMessageHandler(messages service.MessageService, notifier service.NotificationService) *MessageHandler {
	return &MessageHandler{messages: messages, notifier: notifier}
}

// createResponse is the JSON body for POST /api/messages.
type createResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	SMS     *model.DispatchResult `json:"sms,omitempty"`
}

// Create handles POST /api/messages.
// The lead is stored first; the administrator SMS is attempted only after a
// successful save and its outcome never changes the status code. Both steps
// run to completion even if the client goes away.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, "request body too large")
			return
		}
		h.fail(w, err.Error())
		return
	}

	in, err := model.ParseMessageInput(data)
	if err != nil {
		h.fail(w, err.Error())
		return
	}

	// a client disconnect must not lose an accepted lead
	ctx := context.WithoutCancel(r.Context())
	if _, err := h.messages.Create(ctx, in); err != nil {
		h.fail(w, err.Error())
		return
	}

	res := h.notifier.Dispatch(ctx, in)
	writeJSON(w, http.StatusCreated, createResponse{Success: true, Message: messageSaved, SMS: &res})
}

func (h *MessageHandler) fail(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, createResponse{Success: false, Message: msg})
}

// List handles GET /api/messages, newest first.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: err.Error()})
		return
	}

	// Return [] not null for empty lists
	if messages == nil {
		messages = []*model.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}
