package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mommamia-caters/api/internal/cart"
	"github.com/mommamia-caters/api/internal/config"
	"github.com/mommamia-caters/api/internal/handler"
	"github.com/mommamia-caters/api/internal/menu"
	"github.com/mommamia-caters/api/internal/webhook"
	"github.com/mommamia-caters/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(
	cfg *config.Config,
	catalog *menu.Client,
	carts *cart.Store,
	chat *webhook.ChatClient,
	contact *webhook.ContactClient,
	hub *ws.Hub,
) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Menu catalog
	menuHandler := handler.NewMenuHandler(catalog)
	r.Route("/menu", menuHandler.RegisterRoutes)

	// Cart sessions
	cartHandler := handler.NewCartHandler(carts, catalog, hub)
	r.Route("/carts", cartHandler.RegisterRoutes)

	// Assistant and contact relays
	chatHandler := handler.NewChatHandler(chat)
	r.Route("/chat", chatHandler.RegisterRoutes)

	contactHandler := handler.NewContactHandler(contact)
	r.Route("/contact", contactHandler.RegisterRoutes)

	// WebSocket route for live cart updates
	r.Get("/ws/carts/{id}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, carts, w, r)
	})

	return r
}
