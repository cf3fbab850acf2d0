package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mommamia-caters/api/internal/webhook"
)

// Fallback replies when the assistant misbehaves. A chat widget should
// always render something conversational, never an error page.
const (
	chatEmptyReplyMessage = "Sorry, I had trouble understanding that. Could you try asking again?"
	chatFailureMessage    = "Oops! Something went wrong. Please try again in a moment."
)

// ChatSender posts one conversation turn to the assistant workflow.
// Satisfied by *webhook.ChatClient; narrow interface for testability.
type ChatSender interface {
	Send(ctx context.Context, message string, convContext json.RawMessage) (*webhook.ChatReply, error)
}

// ChatHandler relays storefront chat turns to the assistant webhook.
type ChatHandler struct {
	sender ChatSender
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(sender ChatSender) *ChatHandler {
	return &ChatHandler{sender: sender}
}

// RegisterRoutes registers chat endpoints on the given Chi router.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Send)
}

type chatRequest struct {
	Message string          `json:"message"`
	Context json.RawMessage `json:"context"`
}

type chatResponse struct {
	Response  string          `json:"response"`
	Status    string          `json:"status"`
	Context   json.RawMessage `json:"context"`
	Intents   []string        `json:"intents,omitempty"`
	LeadScore json.RawMessage `json:"leadScore,omitempty"`
}

// Send handles POST /chat: one user message plus the opaque conversation
// context from the previous turn.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	reply, err := h.sender.Send(r.Context(), req.Message, req.Context)
	if err != nil {
		// A navigated-away client cancelled the request; nothing to answer.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		log.Printf("ERROR: chat webhook: %v", err)
		msg := chatFailureMessage
		if errors.Is(err, webhook.ErrBadResponse) {
			msg = chatEmptyReplyMessage
		}
		writeJSON(w, http.StatusOK, chatResponse{
			Response: msg,
			Status:   "error",
			Context:  req.Context,
		})
		return
	}

	resp := chatResponse{
		Response:  reply.Response,
		Status:    reply.Status,
		Context:   reply.Context,
		Intents:   reply.Intents,
		LeadScore: reply.LeadScore,
	}
	if resp.Response == "" {
		resp.Response = chatEmptyReplyMessage
	}
	if resp.Status == "" {
		resp.Status = "ok"
	}
	writeJSON(w, http.StatusOK, resp)
}
