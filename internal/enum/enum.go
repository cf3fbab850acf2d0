package enum

// --- Dish categories (drive slot allocation) ---

type Category string

const (
	CategoryMain   Category = "main"
	CategorySide   Category = "side"
	CategoryStarch Category = "starch"
)

// Categories lists all dish categories in display order.
var Categories = []Category{CategoryMain, CategorySide, CategoryStarch}

func ValidCategory(c Category) bool {
	switch c {
	case CategoryMain, CategorySide, CategoryStarch:
		return true
	}
	return false
}

// --- Box plans (each maps to static slot limits) ---

type BoxPlan string

const (
	BoxPlanDoubleTheProtein BoxPlan = "Double The Protein"
	BoxPlanBalancedDiet     BoxPlan = "Balanced Diet"
)

// BoxPlans lists all box plans in display order.
var BoxPlans = []BoxPlan{BoxPlanDoubleTheProtein, BoxPlanBalancedDiet}

func ValidBoxPlan(p BoxPlan) bool {
	switch p {
	case BoxPlanDoubleTheProtein, BoxPlanBalancedDiet:
		return true
	}
	return false
}

// --- Menu categories (upstream catalog partitions) ---

type MenuCategory string

const (
	MenuCategoryCheckALunch MenuCategory = "check-a-lunch"
	MenuCategoryFunBoxes    MenuCategory = "fun-boxes"
)

// MenuCategories lists all menu categories in display order.
var MenuCategories = []MenuCategory{MenuCategoryCheckALunch, MenuCategoryFunBoxes}

func ValidMenuCategory(c MenuCategory) bool {
	switch c {
	case MenuCategoryCheckALunch, MenuCategoryFunBoxes:
		return true
	}
	return false
}
