// Package allocation holds the pure order-composition logic: expanding box
// orders into addressable box instances, distributing selected dishes across
// them under per-category slot limits, and computing price rollups. Nothing
// here mutates its inputs; the cart controller calls these on every change.
package allocation

import (
	"github.com/google/uuid"
	"github.com/mommamia-caters/api/internal/enum"
	"github.com/mommamia-caters/api/internal/menu"
	"github.com/shopspring/decimal"
)

// SlotLimits is the fixed per-category dish capacity of a box plan.
type SlotLimits struct {
	Main   int `json:"main"`
	Side   int `json:"side"`
	Starch int `json:"starch"`
}

// ForCategory returns the limit for one dish category.
func (l SlotLimits) ForCategory(c enum.Category) int {
	switch c {
	case enum.CategoryMain:
		return l.Main
	case enum.CategorySide:
		return l.Side
	case enum.CategoryStarch:
		return l.Starch
	}
	return 0
}

// planLimits maps each box plan to its slot limits.
var planLimits = map[enum.BoxPlan]SlotLimits{
	enum.BoxPlanDoubleTheProtein: {Main: 2, Side: 1, Starch: 1},
	enum.BoxPlanBalancedDiet:     {Main: 1, Side: 1, Starch: 1},
}

// LimitsFor returns the slot limits for a box plan. Unknown plans get a zero
// limit record, which rejects every dish.
func LimitsFor(plan enum.BoxPlan) SlotLimits {
	return planLimits[plan]
}

// BoxOrder is a selected box plan with a repeat quantity. Quantity is always
// >= 1; an order dropping below 1 is deleted by the cart controller.
type BoxOrder struct {
	Plan     enum.BoxPlan `json:"plan"`
	Quantity int          `json:"quantity"`
}

// SelectedItem is one unit of a chosen dish. Quantity is always one; "3 of
// dish X" is three instances. InstanceID identifies the unit for removal.
type SelectedItem struct {
	menu.Item
	InstanceID uuid.UUID `json:"instance_id"`
}

// BoxInstance is one unit of a BoxOrder after quantity expansion, the unit
// dishes are actually allocated against. Derived fresh on every pass, never
// cached: a box removed and re-added gets renumbered.
type BoxInstance struct {
	Plan          enum.BoxPlan `json:"plan"`
	InstanceIndex int          `json:"instance_index"`
	GlobalIndex   int          `json:"global_index"`
	OrderIndex    int          `json:"order_index"`
}

// ExpandBoxInstances flattens box orders into individually addressable
// instances. GlobalIndex follows order list position, then instance index
// within each order, giving a stable total ordering.
func ExpandBoxInstances(orders []BoxOrder) []BoxInstance {
	var instances []BoxInstance
	globalIndex := 0
	for orderIndex, order := range orders {
		for i := 0; i < order.Quantity; i++ {
			instances = append(instances, BoxInstance{
				Plan:          order.Plan,
				InstanceIndex: i,
				GlobalIndex:   globalIndex,
				OrderIndex:    orderIndex,
			})
			globalIndex++
		}
	}
	return instances
}

// Distribute assigns each selected item to a box instance bucket. Items are
// taken in input order; each scans instances by ascending GlobalIndex and
// lands in the first bucket with unfilled capacity for its dish category.
// An item that fits nowhere is forced into bucket 0 so nothing is dropped;
// that path is unreachable while the cart's capacity invariant holds.
func Distribute(instances []BoxInstance, items []SelectedItem) map[int][]SelectedItem {
	distribution := make(map[int][]SelectedItem, len(instances))
	for _, inst := range instances {
		distribution[inst.GlobalIndex] = []SelectedItem{}
	}

	for _, item := range items {
		placed := false
		for _, inst := range instances {
			limits := LimitsFor(inst.Plan)
			typeCount := 0
			for _, existing := range distribution[inst.GlobalIndex] {
				if existing.Type == item.Type {
					typeCount++
				}
			}
			if typeCount < limits.ForCategory(item.Type) {
				distribution[inst.GlobalIndex] = append(distribution[inst.GlobalIndex], item)
				placed = true
				break
			}
		}
		if !placed && len(instances) > 0 {
			first := instances[0].GlobalIndex
			distribution[first] = append(distribution[first], item)
		}
	}

	return distribution
}

// MaxAllowed sums slot limits across all box orders, weighted by quantity.
// This is the selection ceiling per dish category.
func MaxAllowed(orders []BoxOrder) SlotLimits {
	var max SlotLimits
	for _, order := range orders {
		limits := LimitsFor(order.Plan)
		max.Main += limits.Main * order.Quantity
		max.Side += limits.Side * order.Quantity
		max.Starch += limits.Starch * order.Quantity
	}
	return max
}

// CountByCategory tallies selected items per dish category.
func CountByCategory(items []SelectedItem) SlotLimits {
	var counts SlotLimits
	for _, item := range items {
		switch item.Type {
		case enum.CategoryMain:
			counts.Main++
		case enum.CategorySide:
			counts.Side++
		case enum.CategoryStarch:
			counts.Starch++
		}
	}
	return counts
}

// ReferencePrices are the per-category prices box pricing is computed from:
// the first catalog item of each category. The catalog's ordering is
// therefore price-significant; confirmed fragile with the business.
type ReferencePrices struct {
	Main   decimal.Decimal
	Side   decimal.Decimal
	Starch decimal.Decimal
}

// ReferencePricesFrom derives reference prices from a menu category's data.
// Empty partitions contribute zero.
func ReferencePricesFrom(data menu.TypeData) ReferencePrices {
	var ref ReferencePrices
	if len(data.Main) > 0 {
		ref.Main = data.Main[0].Price
	}
	if len(data.Side) > 0 {
		ref.Side = data.Side[0].Price
	}
	if len(data.Starch) > 0 {
		ref.Starch = data.Starch[0].Price
	}
	return ref
}

// BoxPrice is the bundled price of one box: slot limit times reference price,
// summed over categories. Dish selections carry no incremental price.
func BoxPrice(plan enum.BoxPlan, ref ReferencePrices) decimal.Decimal {
	limits := LimitsFor(plan)
	price := ref.Main.Mul(decimal.NewFromInt(int64(limits.Main)))
	price = price.Add(ref.Side.Mul(decimal.NewFromInt(int64(limits.Side))))
	price = price.Add(ref.Starch.Mul(decimal.NewFromInt(int64(limits.Starch))))
	return price
}

// TotalPrice sums BoxPrice times quantity over all box orders.
func TotalPrice(orders []BoxOrder, ref ReferencePrices) decimal.Decimal {
	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(BoxPrice(order.Plan, ref).Mul(decimal.NewFromInt(int64(order.Quantity))))
	}
	return total
}
