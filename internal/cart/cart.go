// Package cart owns the mutable order state for one shopper session and
// keeps it consistent with the allocation engine's capacity rules after
// every mutation.
package cart

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mommamia-caters/api/internal/allocation"
	"github.com/mommamia-caters/api/internal/enum"
	"github.com/mommamia-caters/api/internal/menu"
	"github.com/shopspring/decimal"
)

// Errors returned by cart operations.
var (
	ErrUnknownPlan      = errors.New("unknown box plan")
	ErrNoBoxSelected    = errors.New("select a box plan before adding dishes")
	ErrCapacityExceeded = errors.New("dish limit reached for this category")
	ErrItemNotSelected  = errors.New("dish is not in the cart")
	ErrInstanceNotFound = errors.New("dish instance not found")
)

// Cart is one shopper's in-session order: selected box plans and the pool of
// chosen dish instances. Safe for concurrent use; every operation leaves the
// capacity invariant intact before returning.
type Cart struct {
	id           uuid.UUID
	menuCategory enum.MenuCategory

	mu        sync.Mutex
	boxOrders []allocation.BoxOrder
	items     []allocation.SelectedItem
	createdAt time.Time
	updatedAt time.Time
}

// New creates an empty cart scoped to one menu category.
func New(menuCategory enum.MenuCategory, now time.Time) *Cart {
	return &Cart{
		id:           uuid.New(),
		menuCategory: menuCategory,
		createdAt:    now,
		updatedAt:    now,
	}
}

// ID returns the cart's identifier.
func (c *Cart) ID() uuid.UUID { return c.id }

// MenuCategory returns the menu category this cart orders from.
func (c *Cart) MenuCategory() enum.MenuCategory { return c.menuCategory }

// LastActive returns the time of the cart's most recent mutation.
func (c *Cart) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

// SelectBox toggles a box plan: a plan not yet ordered is added with
// quantity one, an ordered plan is removed entirely. Removing the last
// remaining order clears every selected dish.
func (c *Cart) SelectBox(plan enum.BoxPlan, now time.Time) error {
	if !enum.ValidBoxPlan(plan) {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, order := range c.boxOrders {
		if order.Plan == plan {
			c.boxOrders = append(c.boxOrders[:i], c.boxOrders[i+1:]...)
			c.reconcile(now)
			return nil
		}
	}

	c.boxOrders = append(c.boxOrders, allocation.BoxOrder{Plan: plan, Quantity: 1})
	c.reconcile(now)
	return nil
}

// SetBoxQuantity updates an order's quantity in place, preserving list
// order. A quantity below one removes the order, with the same cascade as
// SelectBox.
func (c *Cart) SetBoxQuantity(plan enum.BoxPlan, quantity int, now time.Time) error {
	if !enum.ValidBoxPlan(plan) {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, order := range c.boxOrders {
		if order.Plan == plan {
			if quantity < 1 {
				c.boxOrders = append(c.boxOrders[:i], c.boxOrders[i+1:]...)
			} else {
				c.boxOrders[i].Quantity = quantity
			}
			c.reconcile(now)
			return nil
		}
	}

	if quantity < 1 {
		// Removing an order that does not exist is a no-op.
		return nil
	}
	c.boxOrders = append(c.boxOrders, allocation.BoxOrder{Plan: plan, Quantity: quantity})
	c.reconcile(now)
	return nil
}

// AddItem creates one dish instance, rejecting the add when no box is
// selected or when the dish's category is already at its ceiling.
func (c *Cart) AddItem(item menu.Item, now time.Time) (allocation.SelectedItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.boxOrders) == 0 {
		return allocation.SelectedItem{}, ErrNoBoxSelected
	}

	max := allocation.MaxAllowed(c.boxOrders).ForCategory(item.Type)
	current := 0
	for _, existing := range c.items {
		if existing.Type == item.Type {
			current++
		}
	}
	if current >= max {
		return allocation.SelectedItem{}, fmt.Errorf(
			"maximum %d %s dish(es) allowed based on your box plans: %w",
			max, item.Type, ErrCapacityExceeded)
	}

	instance := allocation.SelectedItem{Item: item, InstanceID: uuid.New()}
	c.items = append(c.items, instance)
	c.updatedAt = now
	return instance, nil
}

// DecreaseItem removes the most-recently-added instance of the named dish.
func (c *Cart) DecreaseItem(name string, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i].Name == name {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.updatedAt = now
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrItemNotSelected, name)
}

// RemoveInstance removes exactly one dish instance by its instance ID,
// leaving same-name duplicates untouched.
func (c *Cart) RemoveInstance(instanceID uuid.UUID, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.InstanceID == instanceID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.updatedAt = now
			return nil
		}
	}
	return ErrInstanceNotFound
}

// Clear empties the cart.
func (c *Cart) Clear(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boxOrders = nil
	c.items = nil
	c.updatedAt = now
}

// reconcile restores the capacity invariant after a box-order mutation.
// No orders left clears every dish; otherwise each category's excess
// instances are trimmed most-recently-added first. Callers hold the mutex.
func (c *Cart) reconcile(now time.Time) {
	c.updatedAt = now

	if len(c.boxOrders) == 0 {
		c.items = nil
		return
	}

	max := allocation.MaxAllowed(c.boxOrders)
	counts := allocation.CountByCategory(c.items)

	excess := map[enum.Category]int{
		enum.CategoryMain:   counts.Main - max.Main,
		enum.CategorySide:   counts.Side - max.Side,
		enum.CategoryStarch: counts.Starch - max.Starch,
	}

	for i := len(c.items) - 1; i >= 0; i-- {
		cat := c.items[i].Type
		if excess[cat] > 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
			excess[cat]--
		}
	}
}

// Summary is the derived view every presentation surface consumes:
// expanded box instances, the dish distribution across them, capacity
// usage, and price/count rollups.
type Summary struct {
	ID            uuid.UUID
	MenuCategory  enum.MenuCategory
	BoxOrders     []allocation.BoxOrder
	SelectedItems []allocation.SelectedItem
	Instances     []allocation.BoxInstance
	Distribution  map[int][]allocation.SelectedItem
	MaxAllowed    allocation.SlotLimits
	Used          allocation.SlotLimits
	BoxPrices     map[enum.BoxPlan]decimal.Decimal
	TotalPrice    decimal.Decimal
	TotalBoxes    int
	TotalItems    int
	UpdatedAt     time.Time
}

// Summarize re-derives the full view from current state. The distribution
// is recomputed from scratch on every call rather than maintained
// incrementally; inputs this small never make that a bottleneck.
func (c *Cart) Summarize(ref allocation.ReferencePrices) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	orders := make([]allocation.BoxOrder, len(c.boxOrders))
	copy(orders, c.boxOrders)
	items := make([]allocation.SelectedItem, len(c.items))
	copy(items, c.items)

	instances := allocation.ExpandBoxInstances(orders)

	boxPrices := make(map[enum.BoxPlan]decimal.Decimal, len(orders))
	totalBoxes := 0
	for _, order := range orders {
		boxPrices[order.Plan] = allocation.BoxPrice(order.Plan, ref)
		totalBoxes += order.Quantity
	}

	return Summary{
		ID:            c.id,
		MenuCategory:  c.menuCategory,
		BoxOrders:     orders,
		SelectedItems: items,
		Instances:     instances,
		Distribution:  allocation.Distribute(instances, items),
		MaxAllowed:    allocation.MaxAllowed(orders),
		Used:          allocation.CountByCategory(items),
		BoxPrices:     boxPrices,
		TotalPrice:    allocation.TotalPrice(orders, ref),
		TotalBoxes:    totalBoxes,
		TotalItems:    len(items) + totalBoxes,
		UpdatedAt:     c.updatedAt,
	}
}
