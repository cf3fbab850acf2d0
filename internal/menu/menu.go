package menu

import (
	"github.com/mommamia-caters/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Item is a single catalog entry as served by the menu webhook.
// Name acts as the identity key within a category+type partition.
type Item struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Category    enum.MenuCategory `json:"category"`
	Type        enum.Category     `json:"type"`
	Image       string            `json:"image"`
}

// TypeData holds a menu category's items partitioned by dish type.
type TypeData struct {
	Main   []Item `json:"main"`
	Side   []Item `json:"side"`
	Starch []Item `json:"starch"`
}

// ByType returns the item list for the given dish category.
func (d TypeData) ByType(c enum.Category) []Item {
	switch c {
	case enum.CategoryMain:
		return d.Main
	case enum.CategorySide:
		return d.Side
	case enum.CategoryStarch:
		return d.Starch
	}
	return nil
}

// Find looks up an item by name, optionally restricted to one dish type.
// An empty dish type searches all three partitions.
func (d TypeData) Find(name string, dishType enum.Category) (Item, bool) {
	cats := enum.Categories
	if dishType != "" {
		cats = []enum.Category{dishType}
	}
	for _, c := range cats {
		for _, item := range d.ByType(c) {
			if item.Name == name {
				return item, true
			}
		}
	}
	return Item{}, false
}

// Data is the full catalog across both menu categories.
type Data struct {
	CheckALunch TypeData `json:"check-a-lunch"`
	FunBoxes    TypeData `json:"fun-boxes"`
}

// ByCategory returns one menu category's partitioned items.
func (d Data) ByCategory(c enum.MenuCategory) TypeData {
	switch c {
	case enum.MenuCategoryCheckALunch:
		return d.CheckALunch
	case enum.MenuCategoryFunBoxes:
		return d.FunBoxes
	}
	return TypeData{}
}

// TypeSlices holds one dish type's items across both menu categories.
type TypeSlices struct {
	CheckALunch []Item `json:"check-a-lunch"`
	FunBoxes    []Item `json:"fun-boxes"`
}
