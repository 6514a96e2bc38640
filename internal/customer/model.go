package customer

import "time"

type Customer struct {
	ID        int64     `json:"customer_id"`
	FullName  string    `json:"full_name"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Visit is one settled order linked to a customer.
type Visit struct {
	OrderID  int64      `json:"order_id"`
	Folio    string     `json:"order_folio"`
	ClosedAt *time.Time `json:"closed_at"`
	Total    float64    `json:"total"`
}
