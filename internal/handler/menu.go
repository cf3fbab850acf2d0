package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mommamia-caters/api/internal/enum"
	"github.com/mommamia-caters/api/internal/menu"
)

// Catalog defines the menu-client methods needed by menu handlers.
// Satisfied by *menu.Client; narrow interface for testability.
type Catalog interface {
	GetAll(ctx context.Context, forceRefresh bool) (menu.Data, error)
	GetCategory(ctx context.Context, category enum.MenuCategory) (menu.TypeData, error)
	GetType(ctx context.Context, dishType enum.Category) (menu.TypeSlices, error)
	GetCategoryType(ctx context.Context, category enum.MenuCategory, dishType enum.Category) ([]menu.Item, error)
	Refresh(ctx context.Context) error
}

// MenuHandler serves the cached catalog to the storefront, mirroring the
// upstream webhook's envelope.
type MenuHandler struct {
	catalog Catalog
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(catalog Catalog) *MenuHandler {
	return &MenuHandler{catalog: catalog}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/refresh", h.Refresh)
}

// menuResponse mirrors the upstream webhook envelope so the storefront can
// consume either source unchanged.
type menuResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Get handles GET /menu with optional category and type query params.
// A degraded upstream still answers with stale-or-empty data; success=false
// plus a message is the error flag the storefront may surface.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category := enum.MenuCategory(q.Get("category"))
	dishType := enum.Category(q.Get("type"))
	if category != "" && !enum.ValidMenuCategory(category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}
	if dishType != "" && !enum.ValidCategory(dishType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid type"})
		return
	}

	var (
		data interface{}
		err  error
	)
	switch {
	case category != "" && dishType != "":
		data, err = h.catalog.GetCategoryType(r.Context(), category, dishType)
	case category != "":
		data, err = h.catalog.GetCategory(r.Context(), category)
	case dishType != "":
		data, err = h.catalog.GetType(r.Context(), dishType)
	default:
		data, err = h.catalog.GetAll(r.Context(), q.Get("refresh") == "true")
	}

	resp := menuResponse{
		Success:   err == nil,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		log.Printf("ERROR: fetch menu: %v", err)
		resp.Message = "menu data may be stale or incomplete"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Refresh handles POST /menu/refresh: asks the upstream workflow to rebuild
// its data and drops the local cache.
func (h *MenuHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		log.Printf("ERROR: refresh menu: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "menu refresh failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
