package handler_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mommamia-caters/api/internal/handler"
	"github.com/mommamia-caters/api/internal/webhook"
)

type mockContactSender struct {
	err       error
	delivered []webhook.ContactMessage
}

func (m *mockContactSender) Send(_ context.Context, msg webhook.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.delivered = append(m.delivered, msg)
	return nil
}

func setupContactRouter(sender *mockContactSender) *chi.Mux {
	h := handler.NewContactHandler(sender)
	r := chi.NewRouter()
	r.Route("/contact", h.RegisterRoutes)
	return r
}

func validContactBody() map[string]string {
	return map[string]string{
		"firstName": "Maria",
		"lastName":  "Santos",
		"email":     "maria@example.com",
		"topic":     "Corporate Catering",
		"message":   "Looking for weekly lunch delivery for 40 people.",
	}
}

func TestContactSend_Valid(t *testing.T) {
	sender := &mockContactSender{}
	router := setupContactRouter(sender)

	rr := doRequest(t, router, "POST", "/contact", validContactBody())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["success"] != true {
		t.Errorf("success: got %v, want true", resp["success"])
	}

	if len(sender.delivered) != 1 {
		t.Fatalf("delivered: got %d messages, want 1", len(sender.delivered))
	}
	msg := sender.delivered[0]
	if msg.FirstName != "Maria" || msg.LastName != "Santos" {
		t.Errorf("name: got %s %s", msg.FirstName, msg.LastName)
	}
	if msg.Topic != "Corporate Catering" {
		t.Errorf("topic: got %s", msg.Topic)
	}
}

func TestContactSend_MissingFields(t *testing.T) {
	sender := &mockContactSender{}
	router := setupContactRouter(sender)

	body := validContactBody()
	delete(body, "email")
	body["message"] = "   "

	rr := doRequest(t, router, "POST", "/contact", body)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	resp := decodeResponse(t, rr)
	errMsg, _ := resp["error"].(string)
	if !strings.Contains(errMsg, "email") || !strings.Contains(errMsg, "message") {
		t.Errorf("error should name the missing fields, got %q", errMsg)
	}
	if len(sender.delivered) != 0 {
		t.Errorf("webhook should not be called, got %d deliveries", len(sender.delivered))
	}
}

func TestContactSend_InvalidEmail(t *testing.T) {
	sender := &mockContactSender{}
	router := setupContactRouter(sender)

	body := validContactBody()
	body["email"] = "not-an-email"

	rr := doRequest(t, router, "POST", "/contact", body)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestContactSend_InvalidBody(t *testing.T) {
	router := setupContactRouter(&mockContactSender{})

	rr := doRequest(t, router, "POST", "/contact", "not json")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestContactSend_UpstreamFailure(t *testing.T) {
	sender := &mockContactSender{err: errors.New("intake down")}
	router := setupContactRouter(sender)

	rr := doRequest(t, router, "POST", "/contact", validContactBody())

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}
}
