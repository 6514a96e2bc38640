package pos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

// SoldItem is the slice of an order detail the close path needs: which
// product and how many, to fan out into recipe decrements.
type SoldItem struct {
	ProductID int64
	Quantity  int
}

// CancelledItemInfo captures what the audit record needs before the detail
// row is deleted.
type CancelledItemInfo struct {
	OrderID     int64
	ProductName string
}

type ItemInfo struct {
	ProductName string
	OrderFolio  string
}

type Repository interface {
	WithTx(tx pgx.Tx) Repository

	CreateOrder(ctx context.Context, o *Order) (int64, error)
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	ListOpenOrders(ctx context.Context) ([]OpenOrderSummary, error)
	SetStatus(ctx context.Context, orderID int64, status OrderStatus) error
	MarkPaid(ctx context.Context, orderID int64) error
	SetCustomer(ctx context.Context, orderID, customerID int64) error
	SetPriority(ctx context.Context, orderID int64) error

	ListItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	InsertItem(ctx context.Context, item *OrderItem) (int64, error)
	DeleteItem(ctx context.Context, detailID int64) error
	CancelledItemInfo(ctx context.Context, detailID int64) (*CancelledItemInfo, error)
	ItemInfo(ctx context.Context, detailID int64) (*ItemInfo, error)
	SetItemStatus(ctx context.Context, detailID int64, status ItemStatus) error
	SoldItems(ctx context.Context, orderID int64) ([]SoldItem, error)

	InsertPayment(ctx context.Context, p *Payment) error

	ActiveKDSOrders(ctx context.Context, station *string) ([]KDSOrder, error)
	PendingSummary(ctx context.Context) ([]PendingProduct, error)
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) WithTx(tx pgx.Tx) Repository {
	return &repository{q: tx}
}

func (r *repository) CreateOrder(ctx context.Context, o *Order) (int64, error) {
	err := r.q.QueryRow(ctx, `
		INSERT INTO orders (order_folio, table_id, user_id, status)
		VALUES ($1, $2, $3, 'open')
		RETURNING order_id, status, created_at`,
		o.Folio, o.TableID, o.UserID).Scan(&o.ID, &o.Status, &o.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	return o.ID, nil
}

func (r *repository) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var o Order
	err := r.q.QueryRow(ctx, `
		SELECT order_id, order_folio, table_id, user_id, customer_id, status, is_priority, created_at, closed_at
		FROM orders WHERE order_id = $1`, orderID).
		Scan(&o.ID, &o.Folio, &o.TableID, &o.UserID, &o.CustomerID, &o.Status, &o.IsPriority, &o.CreatedAt, &o.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", orderID, err)
	}
	return &o, nil
}

func (r *repository) ListOpenOrders(ctx context.Context) ([]OpenOrderSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT o.order_id, o.order_folio, o.created_at, o.status,
			COALESCE(t.table_name, 'Takeaway') AS table_name
		FROM orders o
		LEFT JOIN restaurant_tables t ON o.table_id = t.table_id
		WHERE o.status IN ('open', 'ready')
		ORDER BY o.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list open orders: %w", err)
	}
	defer rows.Close()

	var orders []OpenOrderSummary
	for rows.Next() {
		var s OpenOrderSummary
		if err := rows.Scan(&s.OrderID, &s.Folio, &s.CreatedAt, &s.Status, &s.TableName); err != nil {
			return nil, fmt.Errorf("failed to scan open order: %w", err)
		}
		orders = append(orders, s)
	}
	return orders, rows.Err()
}

func (r *repository) SetStatus(ctx context.Context, orderID int64, status OrderStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET status = $1 WHERE order_id = $2`, string(status), orderID)
	if err != nil {
		return fmt.Errorf("failed to set order %d status: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) MarkPaid(ctx context.Context, orderID int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET status = 'paid', closed_at = NOW() WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order %d paid: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) SetCustomer(ctx context.Context, orderID, customerID int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET customer_id = $1 WHERE order_id = $2`, customerID, orderID)
	if err != nil {
		return fmt.Errorf("failed to associate customer with order %d: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) SetPriority(ctx context.Context, orderID int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET is_priority = true WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to prioritize order %d: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) ListItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT od.detail_id, od.order_id, od.product_id, od.quantity, od.price_at_time_of_order, od.notes, od.status,
			p.name, p.price
		FROM order_details od
		JOIN products p ON od.product_id = p.product_id
		WHERE od.order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.DetailID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtOrder,
			&item.Notes, &item.Status, &item.ProductName, &item.ProductPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) InsertItem(ctx context.Context, item *OrderItem) (int64, error) {
	// The price arrives snapshotted from the terminal; it is stored as-is so
	// later menu edits do not rewrite order history.
	err := r.q.QueryRow(ctx, `
		INSERT INTO order_details (order_id, product_id, quantity, price_at_time_of_order, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING detail_id, status`,
		item.OrderID, item.ProductID, item.Quantity, item.PriceAtOrder, item.Notes).
		Scan(&item.DetailID, &item.Status)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order item: %w", err)
	}
	return item.DetailID, nil
}

func (r *repository) DeleteItem(ctx context.Context, detailID int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM order_details WHERE detail_id = $1`, detailID)
	if err != nil {
		return fmt.Errorf("failed to delete order item %d: %w", detailID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) CancelledItemInfo(ctx context.Context, detailID int64) (*CancelledItemInfo, error) {
	var info CancelledItemInfo
	err := r.q.QueryRow(ctx, `
		SELECT od.order_id, p.name
		FROM order_details od
		JOIN products p ON od.product_id = p.product_id
		WHERE od.detail_id = $1`, detailID).Scan(&info.OrderID, &info.ProductName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to fetch cancelled item info: %w", err)
	}
	return &info, nil
}

func (r *repository) ItemInfo(ctx context.Context, detailID int64) (*ItemInfo, error) {
	var info ItemInfo
	err := r.q.QueryRow(ctx, `
		SELECT p.name, o.order_folio
		FROM order_details od
		JOIN products p ON od.product_id = p.product_id
		JOIN orders o ON od.order_id = o.order_id
		WHERE od.detail_id = $1`, detailID).Scan(&info.ProductName, &info.OrderFolio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to fetch item info: %w", err)
	}
	return &info, nil
}

func (r *repository) SetItemStatus(ctx context.Context, detailID int64, status ItemStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE order_details SET status = $1 WHERE detail_id = $2`, string(status), detailID)
	if err != nil {
		return fmt.Errorf("failed to set item %d status: %w", detailID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) SoldItems(ctx context.Context, orderID int64) ([]SoldItem, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id, quantity FROM order_details WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sold items: %w", err)
	}
	defer rows.Close()

	var items []SoldItem
	for rows.Next() {
		var item SoldItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan sold item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) InsertPayment(ctx context.Context, p *Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (order_id, payment_method, amount, processed_by_user_id)
		VALUES ($1, $2, $3, $4)`,
		p.OrderID, p.Method, p.Amount, p.ProcessedByID)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// ActiveKDSOrders returns open orders with their items, optionally filtered
// to one preparation station. Orders whose items all belong to other
// stations are dropped.
func (r *repository) ActiveKDSOrders(ctx context.Context, station *string) ([]KDSOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT o.order_id, o.order_folio, o.is_priority,
			COALESCE(t.table_name, 'Takeaway') AS table_name,
			od.detail_id, p.name, od.quantity, od.notes, od.status
		FROM orders o
		LEFT JOIN restaurant_tables t ON o.table_id = t.table_id
		JOIN order_details od ON od.order_id = o.order_id
		JOIN products p ON od.product_id = p.product_id
		WHERE o.status = 'open' AND ($1::text IS NULL OR p.station = $1)
		ORDER BY o.is_priority DESC, o.created_at ASC, od.detail_id ASC`, station)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch KDS orders: %w", err)
	}
	defer rows.Close()

	var orders []KDSOrder
	index := make(map[int64]int)
	for rows.Next() {
		var (
			o    KDSOrder
			item KDSItem
		)
		if err := rows.Scan(&o.OrderID, &o.Folio, &o.IsPriority, &o.TableName,
			&item.DetailID, &item.Name, &item.Quantity, &item.Notes, &item.Status); err != nil {
			return nil, fmt.Errorf("failed to scan KDS order row: %w", err)
		}
		if i, ok := index[o.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
			continue
		}
		o.Items = []KDSItem{item}
		index[o.OrderID] = len(orders)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) PendingSummary(ctx context.Context) ([]PendingProduct, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.name, SUM(od.quantity) AS total_pending
		FROM order_details od
		JOIN products p ON od.product_id = p.product_id
		JOIN orders o ON od.order_id = o.order_id
		WHERE o.status = 'open' AND od.status = 'pending'
		GROUP BY p.name
		ORDER BY total_pending DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending summary: %w", err)
	}
	defer rows.Close()

	var summary []PendingProduct
	for rows.Next() {
		var p PendingProduct
		if err := rows.Scan(&p.Name, &p.TotalPending); err != nil {
			return nil, fmt.Errorf("failed to scan pending summary row: %w", err)
		}
		summary = append(summary, p)
	}
	return summary, rows.Err()
}
