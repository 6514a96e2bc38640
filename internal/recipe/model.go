package recipe

// Component is one ingredient line of a product's recipe: producing one unit
// of the product consumes QuantityUsed of the supply.
type Component struct {
	RecipeID     int64   `json:"recipe_id"`
	SupplyID     int64   `json:"supply_id"`
	SupplyName   string  `json:"supply_name,omitempty"`
	QuantityUsed float64 `json:"quantity_used"`
	Unit         string  `json:"unit_of_measure,omitempty"`
}
