package pos

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	StatusOpen  OrderStatus = "open"
	StatusReady OrderStatus = "ready"
	StatusPaid  OrderStatus = "paid"
)

func (s OrderStatus) String() string {
	return string(s)
}

// allowedTransitions is the closed state machine for an order. Paid is
// terminal; Ready is an advisory stop set by the kitchen.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusOpen: {
		StatusReady: true,
		StatusPaid:  true,
	},
	StatusReady: {
		StatusPaid: true,
	},
	StatusPaid: {},
}

func canTransition(from, to OrderStatus) bool {
	return allowedTransitions[from][to]
}

type ItemStatus string

const (
	ItemPending       ItemStatus = "pending"
	ItemInPreparation ItemStatus = "in_preparation"
	ItemReady         ItemStatus = "ready"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrItemNotFound            = errors.New("order item not found")
	ErrOrderNotOpen            = errors.New("order is not open")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrPermissionDenied        = errors.New("not allowed to cancel order items")
)

type Order struct {
	ID         int64       `json:"order_id"`
	Folio      string      `json:"order_folio"`
	TableID    *int64      `json:"table_id,omitempty"`
	UserID     int64       `json:"user_id"`
	CustomerID *int64      `json:"customer_id,omitempty"`
	Status     OrderStatus `json:"status"`
	IsPriority bool        `json:"is_priority"`
	CreatedAt  time.Time   `json:"created_at"`
	ClosedAt   *time.Time  `json:"closed_at,omitempty"`
}

// OrderItem is one line on an order. PriceAtOrder is the snapshot supplied
// when the item was added, not the product's live price.
type OrderItem struct {
	DetailID     int64      `json:"detail_id"`
	OrderID      int64      `json:"order_id"`
	ProductID    int64      `json:"product_id"`
	Quantity     int        `json:"quantity"`
	PriceAtOrder float64    `json:"price_at_time_of_order"`
	Notes        *string    `json:"notes,omitempty"`
	Status       ItemStatus `json:"status"`
	ProductName  string     `json:"name,omitempty"`
	ProductPrice float64    `json:"price,omitempty"`
}

// OpenOrderSummary backs the waiter's open-orders board. Orders without a
// table show up as takeaway.
type OpenOrderSummary struct {
	OrderID   int64       `json:"order_id"`
	Folio     string      `json:"order_folio"`
	CreatedAt time.Time   `json:"created_at"`
	Status    OrderStatus `json:"status"`
	TableName string      `json:"table_name"`
}

type Payment struct {
	OrderID       int64   `json:"order_id"`
	Method        string  `json:"payment_method"`
	Amount        float64 `json:"amount"`
	ProcessedByID int64   `json:"processed_by_user_id"`
}

type KDSItem struct {
	DetailID int64      `json:"detail_id"`
	Name     string     `json:"name"`
	Quantity int        `json:"quantity"`
	Notes    *string    `json:"notes,omitempty"`
	Status   ItemStatus `json:"status"`
}

type KDSOrder struct {
	OrderID    int64     `json:"order_id"`
	Folio      string    `json:"order_folio"`
	IsPriority bool      `json:"is_priority"`
	TableName  string    `json:"table_name"`
	Items      []KDSItem `json:"items"`
}

type PendingProduct struct {
	Name         string `json:"name"`
	TotalPending int64  `json:"total_pending"`
}
