package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

var (
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")
	ErrPurchaseOrderEmpty    = errors.New("purchase order has no items to receive")
)

type PurchaseRepository interface {
	WithTx(tx pgx.Tx) PurchaseRepository

	List(ctx context.Context) ([]PurchaseOrder, error)
	Get(ctx context.Context, poID int64) (*PurchaseOrder, error)
	Create(ctx context.Context, supplierID, createdBy int64) (int64, error)
	AddItem(ctx context.Context, item *PurchaseOrderItem) (int64, error)
	Items(ctx context.Context, poID int64) ([]PurchaseOrderItem, error)
	MarkReceived(ctx context.Context, poID int64) error

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreateSupplier(ctx context.Context, s *Supplier) (int64, error)
}

type purchaseRepository struct {
	q db.Querier
}

func NewPurchaseRepository(q db.Querier) PurchaseRepository {
	return &purchaseRepository{q: q}
}

func (r *purchaseRepository) WithTx(tx pgx.Tx) PurchaseRepository {
	return &purchaseRepository{q: tx}
}

func (r *purchaseRepository) List(ctx context.Context) ([]PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT po.po_id, po.supplier_id, s.name, po.created_by_user_id, po.status, po.order_date
		FROM purchase_orders po
		JOIN suppliers s ON po.supplier_id = s.supplier_id
		ORDER BY po.order_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(&po.ID, &po.SupplierID, &po.SupplierName, &po.CreatedBy, &po.Status, &po.OrderDate); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

func (r *purchaseRepository) Get(ctx context.Context, poID int64) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := r.q.QueryRow(ctx, `
		SELECT po.po_id, po.supplier_id, s.name, po.created_by_user_id, po.status, po.order_date
		FROM purchase_orders po
		JOIN suppliers s ON po.supplier_id = s.supplier_id
		WHERE po.po_id = $1`, poID).
		Scan(&po.ID, &po.SupplierID, &po.SupplierName, &po.CreatedBy, &po.Status, &po.OrderDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order %d: %w", poID, err)
	}

	items, err := r.Items(ctx, poID)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return &po, nil
}

func (r *purchaseRepository) Create(ctx context.Context, supplierID, createdBy int64) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO purchase_orders (supplier_id, created_by_user_id, status)
		VALUES ($1, $2, 'pending') RETURNING po_id`, supplierID, createdBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert purchase order: %w", err)
	}
	return id, nil
}

func (r *purchaseRepository) AddItem(ctx context.Context, item *PurchaseOrderItem) (int64, error) {
	err := r.q.QueryRow(ctx, `
		INSERT INTO purchase_order_items (po_id, supply_id, quantity, cost)
		VALUES ($1, $2, $3, $4) RETURNING po_item_id`,
		item.POID, item.SupplyID, item.Quantity, item.Cost).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert purchase order item: %w", err)
	}
	return item.ID, nil
}

func (r *purchaseRepository) Items(ctx context.Context, poID int64) ([]PurchaseOrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT poi.po_item_id, poi.po_id, poi.supply_id, s.name, poi.quantity, poi.cost
		FROM purchase_order_items poi
		JOIN supplies s ON poi.supply_id = s.supply_id
		WHERE poi.po_id = $1`, poID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchase order items: %w", err)
	}
	defer rows.Close()

	var items []PurchaseOrderItem
	for rows.Next() {
		var item PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.POID, &item.SupplyID, &item.SupplyName, &item.Quantity, &item.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *purchaseRepository) MarkReceived(ctx context.Context, poID int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE purchase_orders SET status = 'received' WHERE po_id = $1`, poID)
	if err != nil {
		return fmt.Errorf("failed to mark purchase order %d received: %w", poID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPurchaseOrderNotFound
	}
	return nil
}

func (r *purchaseRepository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.q.Query(ctx, `SELECT supplier_id, name, contact FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *purchaseRepository) CreateSupplier(ctx context.Context, s *Supplier) (int64, error) {
	err := r.q.QueryRow(ctx, `INSERT INTO suppliers (name, contact) VALUES ($1, $2) RETURNING supplier_id`,
		s.Name, s.Contact).Scan(&s.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to create supplier: %w", err)
	}
	return s.ID, nil
}
