package cart

import (
	"errors"
	"testing"
	"time"

	"github.com/mommamia-caters/api/internal/allocation"
	"github.com/mommamia-caters/api/internal/enum"
	"github.com/mommamia-caters/api/internal/menu"
	"github.com/shopspring/decimal"
)

var testTime = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestCart() *Cart {
	return New(enum.MenuCategoryCheckALunch, testTime)
}

func dish(name string, dishType enum.Category) menu.Item {
	return menu.Item{
		Name:     name,
		Type:     dishType,
		Category: enum.MenuCategoryCheckALunch,
		Price:    decimal.NewFromInt(150),
	}
}

func mustAdd(t *testing.T, c *Cart, item menu.Item) allocation.SelectedItem {
	t.Helper()
	inst, err := c.AddItem(item, testTime)
	if err != nil {
		t.Fatalf("AddItem(%s): %v", item.Name, err)
	}
	return inst
}

// assertInvariant checks the capacity invariant after an operation: per
// category, selected count never exceeds the summed slot limits.
func assertInvariant(t *testing.T, c *Cart) {
	t.Helper()
	s := c.Summarize(allocation.ReferencePrices{})
	max := allocation.MaxAllowed(s.BoxOrders)
	used := allocation.CountByCategory(s.SelectedItems)
	if used.Main > max.Main || used.Side > max.Side || used.Starch > max.Starch {
		t.Fatalf("capacity invariant violated: used %+v, max %+v", used, max)
	}
}

func TestSelectBox_ToggleOnAndOff(t *testing.T) {
	c := newTestCart()

	if err := c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime); err != nil {
		t.Fatalf("SelectBox: %v", err)
	}
	s := c.Summarize(allocation.ReferencePrices{})
	if len(s.BoxOrders) != 1 || s.BoxOrders[0].Quantity != 1 {
		t.Fatalf("after select, orders = %+v, want one order qty 1", s.BoxOrders)
	}

	// Selecting the same plan again removes it entirely.
	if err := c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime); err != nil {
		t.Fatalf("SelectBox toggle off: %v", err)
	}
	s = c.Summarize(allocation.ReferencePrices{})
	if len(s.BoxOrders) != 0 {
		t.Errorf("after toggle off, orders = %+v, want none", s.BoxOrders)
	}
}

func TestSelectBox_UnknownPlan(t *testing.T) {
	c := newTestCart()
	err := c.SelectBox(enum.BoxPlan("Mystery Box"), testTime)
	if !errors.Is(err, ErrUnknownPlan) {
		t.Errorf("SelectBox(unknown) err = %v, want ErrUnknownPlan", err)
	}
}

func TestSelectBox_RemovingLastPlanClearsItems(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime)
	mustAdd(t, c, dish("Adobo", enum.CategoryMain))
	mustAdd(t, c, dish("Chopsuey", enum.CategorySide))

	c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime)

	s := c.Summarize(allocation.ReferencePrices{})
	if len(s.SelectedItems) != 0 {
		t.Errorf("items after removing last box = %d, want 0", len(s.SelectedItems))
	}
}

func TestSelectBox_RemovingOnePlanKeepsFittingItems(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime)
	c.SelectBox(enum.BoxPlanBalancedDiet, testTime)
	mustAdd(t, c, dish("Adobo", enum.CategoryMain))
	mustAdd(t, c, dish("Bistek", enum.CategoryMain))

	// Dropping the balanced box leaves max main = 2; both mains still fit.
	c.SelectBox(enum.BoxPlanBalancedDiet, testTime)

	s := c.Summarize(allocation.ReferencePrices{})
	if len(s.SelectedItems) != 2 {
		t.Errorf("items = %d, want 2 kept", len(s.SelectedItems))
	}
	assertInvariant(t, c)
}

func TestSetBoxQuantity_UpdatesInPlace(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime)
	c.SelectBox(enum.BoxPlanBalancedDiet, testTime)

	if err := c.SetBoxQuantity(enum.BoxPlanDoubleTheProtein, 3, testTime); err != nil {
		t.Fatalf("SetBoxQuantity: %v", err)
	}

	s := c.Summarize(allocation.ReferencePrices{})
	if s.BoxOrders[0].Plan != enum.BoxPlanDoubleTheProtein || s.BoxOrders[0].Quantity != 3 {
		t.Errorf("orders[0] = %+v, want double-protein qty 3 in original position", s.BoxOrders[0])
	}
	if s.BoxOrders[1].Plan != enum.BoxPlanBalancedDiet {
		t.Errorf("orders[1] = %+v, list order not preserved", s.BoxOrders[1])
	}
}

func TestSetBoxQuantity_BelowOneRemovesAndCascades(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime)
	mustAdd(t, c, dish("Adobo", enum.CategoryMain))

	if err := c.SetBoxQuantity(enum.BoxPlanDoubleTheProtein, 0, testTime); err != nil {
		t.Fatalf("SetBoxQuantity(0): %v", err)
	}

	s := c.Summarize(allocation.ReferencePrices{})
	if len(s.BoxOrders) != 0 || len(s.SelectedItems) != 0 {
		t.Errorf("orders/items = %d/%d, want 0/0", len(s.BoxOrders), len(s.SelectedItems))
	}
}

func TestSetBoxQuantity_ShrinkTrimsMostRecentFirst(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanBalancedDiet, testTime)
	c.SetBoxQuantity(enum.BoxPlanBalancedDiet, 2, testTime)

	mustAdd(t, c, dish("Adobo", enum.CategoryMain))
	mustAdd(t, c, dish("Bistek", enum.CategoryMain))

	// Shrinking 2 -> 1 leaves room for one main; the later add goes.
	if err := c.SetBoxQuantity(enum.BoxPlanBalancedDiet, 1, testTime); err != nil {
		t.Fatalf("SetBoxQuantity(1): %v", err)
	}

	s := c.Summarize(allocation.ReferencePrices{})
	if len(s.SelectedItems) != 1 {
		t.Fatalf("items = %d, want exactly 1 trimmed", len(s.SelectedItems))
	}
	if s.SelectedItems[0].Name != "Adobo" {
		t.Errorf("kept %q, want earliest-added Adobo", s.SelectedItems[0].Name)
	}
	assertInvariant(t, c)
}

func TestAddItem_NoBoxSelected(t *testing.T) {
	c := newTestCart()
	_, err := c.AddItem(dish("Adobo", enum.CategoryMain), testTime)
	if !errors.Is(err, ErrNoBoxSelected) {
		t.Errorf("AddItem without boxes err = %v, want ErrNoBoxSelected", err)
	}
}

func TestAddItem_CapacityExceeded(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanBalancedDiet, testTime) // main limit 1

	mustAdd(t, c, dish("Adobo", enum.CategoryMain))

	_, err := c.AddItem(dish("Bistek", enum.CategoryMain), testTime)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("AddItem over limit err = %v, want ErrCapacityExceeded", err)
	}

	// The rejected add must leave state untouched.
	s := c.Summarize(allocation.ReferencePrices{})
	if len(s.SelectedItems) != 1 {
		t.Errorf("items = %d after rejected add, want 1", len(s.SelectedItems))
	}
}

func TestAddItem_DuplicatesGetDistinctInstances(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime) // main limit 2

	a := mustAdd(t, c, dish("Adobo", enum.CategoryMain))
	b := mustAdd(t, c, dish("Adobo", enum.CategoryMain))
	if a.InstanceID == b.InstanceID {
		t.Errorf("duplicate adds share an instance ID")
	}
}

func TestDecreaseItem_RemovesMostRecentOfName(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime)

	first := mustAdd(t, c, dish("Adobo", enum.CategoryMain))
	second := mustAdd(t, c, dish("Adobo", enum.CategoryMain))

	if err := c.DecreaseItem("Adobo", testTime); err != nil {
		t.Fatalf("DecreaseItem: %v", err)
	}

	s := c.Summarize(allocation.ReferencePrices{})
	if len(s.SelectedItems) != 1 {
		t.Fatalf("items = %d, want 1", len(s.SelectedItems))
	}
	if s.SelectedItems[0].InstanceID != first.InstanceID {
		t.Errorf("kept instance %s, want the earlier %s (removed %s)",
			s.SelectedItems[0].InstanceID, first.InstanceID, second.InstanceID)
	}
}

func TestDecreaseItem_NotSelected(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanBalancedDiet, testTime)
	if err := c.DecreaseItem("Adobo", testTime); !errors.Is(err, ErrItemNotSelected) {
		t.Errorf("DecreaseItem(missing) err = %v, want ErrItemNotSelected", err)
	}
}

func TestRemoveInstance_ExactInstanceOnly(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime)

	keep := mustAdd(t, c, dish("Adobo", enum.CategoryMain))
	remove := mustAdd(t, c, dish("Adobo", enum.CategoryMain))

	if err := c.RemoveInstance(remove.InstanceID, testTime); err != nil {
		t.Fatalf("RemoveInstance: %v", err)
	}

	s := c.Summarize(allocation.ReferencePrices{})
	if len(s.SelectedItems) != 1 {
		t.Fatalf("items = %d, want 1", len(s.SelectedItems))
	}
	if s.SelectedItems[0].InstanceID != keep.InstanceID {
		t.Errorf("wrong instance removed")
	}

	if err := c.RemoveInstance(remove.InstanceID, testTime); !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("second removal err = %v, want ErrInstanceNotFound", err)
	}
}

func TestSummarize_DistributionAndRollups(t *testing.T) {
	c := newTestCart()
	c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime)

	mustAdd(t, c, dish("Adobo", enum.CategoryMain))
	mustAdd(t, c, dish("Bistek", enum.CategoryMain))
	mustAdd(t, c, dish("Chopsuey", enum.CategorySide))

	ref := allocation.ReferencePrices{
		Main:   decimal.NewFromInt(150),
		Side:   decimal.NewFromInt(80),
		Starch: decimal.NewFromInt(50),
	}
	s := c.Summarize(ref)

	if len(s.Instances) != 1 {
		t.Fatalf("instances = %d, want 1", len(s.Instances))
	}
	if got := len(s.Distribution[0]); got != 3 {
		t.Errorf("bucket 0 items = %d, want all 3", got)
	}
	if s.Used.Main != 2 || s.Used.Side != 1 {
		t.Errorf("used = %+v, want main 2 side 1", s.Used)
	}
	if !s.TotalPrice.Equal(decimal.NewFromInt(430)) {
		t.Errorf("total = %s, want 430", s.TotalPrice)
	}
	if s.TotalBoxes != 1 || s.TotalItems != 4 {
		t.Errorf("totals = %d boxes / %d items, want 1 / 4", s.TotalBoxes, s.TotalItems)
	}
}

func TestCapacityInvariant_RandomizedMutationSequence(t *testing.T) {
	c := newTestCart()
	ops := []func(){
		func() { c.SelectBox(enum.BoxPlanDoubleTheProtein, testTime) },
		func() { c.SelectBox(enum.BoxPlanBalancedDiet, testTime) },
		func() { c.SetBoxQuantity(enum.BoxPlanDoubleTheProtein, 2, testTime) },
		func() { c.SetBoxQuantity(enum.BoxPlanBalancedDiet, 0, testTime) },
		func() { c.AddItem(dish("Adobo", enum.CategoryMain), testTime) },
		func() { c.AddItem(dish("Bistek", enum.CategoryMain), testTime) },
		func() { c.AddItem(dish("Chopsuey", enum.CategorySide), testTime) },
		func() { c.AddItem(dish("Rice", enum.CategoryStarch), testTime) },
		func() { c.DecreaseItem("Adobo", testTime) },
		func() { c.SetBoxQuantity(enum.BoxPlanDoubleTheProtein, 1, testTime) },
	}

	// Every prefix of the sequence must leave the invariant intact.
	for i, op := range ops {
		op()
		s := c.Summarize(allocation.ReferencePrices{})
		max := allocation.MaxAllowed(s.BoxOrders)
		used := allocation.CountByCategory(s.SelectedItems)
		if used.Main > max.Main || used.Side > max.Side || used.Starch > max.Starch {
			t.Fatalf("op %d violated invariant: used %+v, max %+v", i, used, max)
		}
	}
}
