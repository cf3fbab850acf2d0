package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mommamia-caters/api/internal/allocation"
	"github.com/mommamia-caters/api/internal/cart"
	"github.com/mommamia-caters/api/internal/enum"
)

// CartStore defines the session-store methods needed by cart handlers.
// Satisfied by *cart.Store; narrow interface for testability.
type CartStore interface {
	Create(menuCategory enum.MenuCategory) *cart.Cart
	Get(id uuid.UUID) (*cart.Cart, error)
	Delete(id uuid.UUID)
}

// Broadcaster pushes derived cart state to live subscribers. Satisfied by
// *ws.Hub.
type Broadcaster interface {
	CartUpdated(cartID uuid.UUID, payload interface{})
	CartDeleted(cartID uuid.UUID)
}

// CartHandler handles cart session endpoints. Every mutation responds with
// (and broadcasts) the full re-derived summary so no view computes
// allocation on its own.
type CartHandler struct {
	store   CartStore
	catalog Catalog
	hub     Broadcaster
	now     func() time.Time
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(store CartStore, catalog Catalog, hub Broadcaster) *CartHandler {
	return &CartHandler{store: store, catalog: catalog, hub: hub, now: time.Now}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/boxes", h.SelectBox)
	r.Put("/{id}/boxes/{plan}", h.SetBoxQuantity)
	r.Post("/{id}/items", h.AddItem)
	r.Post("/{id}/items/{name}/decrease", h.DecreaseItem)
	r.Delete("/{id}/items/{instanceID}", h.RemoveInstance)
}

// --- Request / Response types ---

type createCartRequest struct {
	MenuCategory string `json:"menu_category"`
}

type selectBoxRequest struct {
	Plan string `json:"plan"`
}

type setBoxQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type addItemRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type slotLimitsResponse struct {
	Main   int `json:"main"`
	Side   int `json:"side"`
	Starch int `json:"starch"`
}

type boxOrderResponse struct {
	Plan     string `json:"plan"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type selectedItemResponse struct {
	InstanceID  string `json:"instance_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Type        string `json:"type"`
	Image       string `json:"image"`
}

type boxInstanceResponse struct {
	Plan          string                 `json:"plan"`
	InstanceIndex int                    `json:"instance_index"`
	GlobalIndex   int                    `json:"global_index"`
	Items         []selectedItemResponse `json:"items"`
}

type cartResponse struct {
	ID            uuid.UUID              `json:"id"`
	MenuCategory  string                 `json:"menu_category"`
	BoxOrders     []boxOrderResponse     `json:"box_orders"`
	SelectedItems []selectedItemResponse `json:"selected_items"`
	Boxes         []boxInstanceResponse  `json:"boxes"`
	MaxAllowed    slotLimitsResponse     `json:"max_allowed"`
	Used          slotLimitsResponse     `json:"used"`
	TotalPrice    string                 `json:"total_price"`
	TotalBoxes    int                    `json:"total_boxes"`
	TotalItems    int                    `json:"total_items"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func toSelectedItemResponse(item allocation.SelectedItem) selectedItemResponse {
	return selectedItemResponse{
		InstanceID:  item.InstanceID.String(),
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price.StringFixed(2),
		Type:        string(item.Type),
		Image:       item.Image,
	}
}

func toCartResponse(s cart.Summary) cartResponse {
	resp := cartResponse{
		ID:           s.ID,
		MenuCategory: string(s.MenuCategory),
		MaxAllowed:   slotLimitsResponse(s.MaxAllowed),
		Used:         slotLimitsResponse(s.Used),
		TotalPrice:   s.TotalPrice.StringFixed(2),
		TotalBoxes:   s.TotalBoxes,
		TotalItems:   s.TotalItems,
		UpdatedAt:    s.UpdatedAt,
	}

	resp.BoxOrders = make([]boxOrderResponse, len(s.BoxOrders))
	for i, order := range s.BoxOrders {
		resp.BoxOrders[i] = boxOrderResponse{
			Plan:     string(order.Plan),
			Quantity: order.Quantity,
			Price:    s.BoxPrices[order.Plan].StringFixed(2),
		}
	}

	resp.SelectedItems = make([]selectedItemResponse, len(s.SelectedItems))
	for i, item := range s.SelectedItems {
		resp.SelectedItems[i] = toSelectedItemResponse(item)
	}

	resp.Boxes = make([]boxInstanceResponse, len(s.Instances))
	for i, inst := range s.Instances {
		bucket := s.Distribution[inst.GlobalIndex]
		items := make([]selectedItemResponse, len(bucket))
		for j, item := range bucket {
			items[j] = toSelectedItemResponse(item)
		}
		resp.Boxes[i] = boxInstanceResponse{
			Plan:          string(inst.Plan),
			InstanceIndex: inst.InstanceIndex,
			GlobalIndex:   inst.GlobalIndex,
			Items:         items,
		}
	}

	return resp
}

// --- Handlers ---

// Create handles POST /carts.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	menuCategory := enum.MenuCategory(req.MenuCategory)
	if menuCategory == "" {
		menuCategory = enum.MenuCategoryCheckALunch
	}
	if !enum.ValidMenuCategory(menuCategory) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu_category"})
		return
	}

	c := h.store.Create(menuCategory)
	writeJSON(w, http.StatusCreated, h.summarize(r, c))
}

// Get handles GET /carts/{id}.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.summarize(r, c))
}

// Delete handles DELETE /carts/{id}.
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromURL(w, r)
	if !ok {
		return
	}
	h.store.Delete(c.ID())
	h.hub.CartDeleted(c.ID())
	w.WriteHeader(http.StatusNoContent)
}

// SelectBox handles POST /carts/{id}/boxes: toggles a box plan on or off.
func (h *CartHandler) SelectBox(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromURL(w, r)
	if !ok {
		return
	}

	var req selectBoxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := c.SelectBox(enum.BoxPlan(req.Plan), h.now()); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.respondAndBroadcast(w, r, c, http.StatusOK)
}

// SetBoxQuantity handles PUT /carts/{id}/boxes/{plan}. A quantity below one
// removes the order.
func (h *CartHandler) SetBoxQuantity(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromURL(w, r)
	if !ok {
		return
	}

	var req setBoxQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	plan := enum.BoxPlan(chi.URLParam(r, "plan"))
	if err := c.SetBoxQuantity(plan, req.Quantity, h.now()); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.respondAndBroadcast(w, r, c, http.StatusOK)
}

// AddItem handles POST /carts/{id}/items. The dish is resolved by name
// against the cart's menu category so clients can't invent items or prices.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromURL(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	dishType := enum.Category(req.Type)
	if req.Type != "" && !enum.ValidCategory(dishType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid type"})
		return
	}

	data, err := h.catalog.GetCategory(r.Context(), c.MenuCategory())
	if err != nil {
		log.Printf("ERROR: fetch catalog for add item: %v", err)
	}
	item, found := data.Find(req.Name, dishType)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "dish not found in menu"})
		return
	}

	if _, err := c.AddItem(item, h.now()); err != nil {
		switch {
		case errors.Is(err, cart.ErrNoBoxSelected), errors.Is(err, cart.ErrCapacityExceeded):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: add item: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	h.respondAndBroadcast(w, r, c, http.StatusCreated)
}

// DecreaseItem handles POST /carts/{id}/items/{name}/decrease: removes the
// most-recently-added instance of the named dish.
func (h *CartHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromURL(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	if err := c.DecreaseItem(name, h.now()); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	h.respondAndBroadcast(w, r, c, http.StatusOK)
}

// RemoveInstance handles DELETE /carts/{id}/items/{instanceID}: removes
// exactly one dish instance.
func (h *CartHandler) RemoveInstance(w http.ResponseWriter, r *http.Request) {
	c, ok := h.cartFromURL(w, r)
	if !ok {
		return
	}

	instanceID, err := uuid.Parse(chi.URLParam(r, "instanceID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid instance ID"})
		return
	}

	if err := c.RemoveInstance(instanceID, h.now()); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	h.respondAndBroadcast(w, r, c, http.StatusOK)
}

// --- Helpers ---

// cartFromURL resolves the {id} URL param to a live cart, writing the error
// response itself when it can't.
func (h *CartHandler) cartFromURL(w http.ResponseWriter, r *http.Request) (*cart.Cart, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart ID"})
		return nil, false
	}

	c, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart not found"})
			return nil, false
		}
		log.Printf("ERROR: get cart: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return nil, false
	}
	return c, true
}

// summarize derives the response view. Reference prices come from the
// cart's menu category; a degraded catalog read still renders, with zero
// reference prices as the worst case.
func (h *CartHandler) summarize(r *http.Request, c *cart.Cart) cartResponse {
	data, err := h.catalog.GetCategory(r.Context(), c.MenuCategory())
	if err != nil {
		log.Printf("ERROR: fetch catalog for summary: %v", err)
	}
	return toCartResponse(c.Summarize(allocation.ReferencePricesFrom(data)))
}

func (h *CartHandler) respondAndBroadcast(w http.ResponseWriter, r *http.Request, c *cart.Cart, status int) {
	resp := h.summarize(r, c)
	h.hub.CartUpdated(c.ID(), resp)
	writeJSON(w, status, resp)
}
