package menu

import "time"

// Product is a sellable menu entry. Station routes the item to a KDS screen
// (kitchen, bar) and may be empty for products nobody prepares.
type Product struct {
	ID          int64     `json:"product_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    *string   `json:"category,omitempty"`
	Station     *string   `json:"station,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
