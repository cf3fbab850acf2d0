package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mommamia-caters/api/internal/webhook"
)

// ContactSender forwards a contact-form submission to the intake webhook.
// Satisfied by *webhook.ContactClient; narrow interface for testability.
type ContactSender interface {
	Send(ctx context.Context, msg webhook.ContactMessage) error
}

// ContactHandler relays contact-form submissions.
type ContactHandler struct {
	sender ContactSender
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(sender ContactSender) *ContactHandler {
	return &ContactHandler{sender: sender}
}

// RegisterRoutes registers contact endpoints on the given Chi router.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Send)
}

// Send handles POST /contact.
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	var msg webhook.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"firstName", msg.FirstName},
		{"lastName", msg.LastName},
		{"email", msg.Email},
		{"topic", msg.Topic},
		{"message", msg.Message},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}
	if !strings.Contains(msg.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}

	if err := h.sender.Send(r.Context(), msg); err != nil {
		log.Printf("ERROR: contact webhook: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to deliver message, please try again later"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
