package inventory

import (
	"time"

	"github.com/gofrs/uuid"
)

// MovementType classifies a stock movement. Movements are append-only: the
// ledger is the audit trail for every change to a supply's quantity.
type MovementType string

const (
	MovementSale            MovementType = "sale"
	MovementCorrection      MovementType = "manual_correction"
	MovementWaste           MovementType = "waste"
	MovementPurchaseReceipt MovementType = "purchase_receipt"
)

func (m MovementType) String() string {
	return string(m)
}

// Supply is a raw ingredient tracked in stock. A supply can also be sellable
// directly (IsSellable), in which case it appears on the menu as well.
type Supply struct {
	ID            int64    `json:"supply_id"`
	Name          string   `json:"name"`
	UnitOfMeasure string   `json:"unit_of_measure"`
	CurrentStock  float64  `json:"current_stock"`
	StockThreshold float64 `json:"stock_threshold"`
	LastCost      *float64 `json:"last_cost,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	IsSellable    bool     `json:"is_sellable"`
}

type Movement struct {
	ID             uuid.UUID    `json:"movement_id"`
	SupplyID       int64        `json:"supply_id"`
	OrderID        *int64       `json:"order_id,omitempty"`
	UserID         *int64       `json:"user_id,omitempty"`
	Type           MovementType `json:"movement_type"`
	QuantityChange float64      `json:"quantity_change"`
	Reason         *string      `json:"reason,omitempty"`
	CreatedAt      time.Time    `json:"movement_timestamp"`
	UserName       *string      `json:"user_name,omitempty"`
}

type PurchaseOrderStatus string

const (
	PurchaseOrderPending  PurchaseOrderStatus = "pending"
	PurchaseOrderReceived PurchaseOrderStatus = "received"
)

type Supplier struct {
	ID      int64   `json:"supplier_id"`
	Name    string  `json:"name"`
	Contact *string `json:"contact,omitempty"`
}

type PurchaseOrder struct {
	ID           int64               `json:"po_id"`
	SupplierID   int64               `json:"supplier_id"`
	SupplierName string              `json:"supplier_name,omitempty"`
	CreatedBy    int64               `json:"created_by_user_id"`
	Status       PurchaseOrderStatus `json:"status"`
	OrderDate    time.Time           `json:"order_date"`
	Items        []PurchaseOrderItem `json:"items,omitempty"`
}

type PurchaseOrderItem struct {
	ID         int64   `json:"po_item_id"`
	POID       int64   `json:"po_id"`
	SupplyID   int64   `json:"supply_id"`
	SupplyName string  `json:"supply_name,omitempty"`
	Quantity   float64 `json:"quantity"`
	Cost       float64 `json:"cost"`
}
