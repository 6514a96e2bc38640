package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

var ErrSupplyNotFound = errors.New("supply not found")

// Ledger is the stock side of the inventory: read quantity-on-hand, move it
// up or down, and record every mutation as a movement row. Decrement pairs
// the stock update with its Sale movement so callers inside a transaction
// get both or neither.
type Ledger interface {
	WithTx(tx pgx.Tx) Ledger

	ListSupplies(ctx context.Context) ([]Supply, error)
	GetSupply(ctx context.Context, id int64) (*Supply, error)
	CreateSupply(ctx context.Context, s *Supply) (int64, error)
	UpdateSupply(ctx context.Context, s *Supply) error
	DeleteSupply(ctx context.Context, id int64) error

	Stock(ctx context.Context, supplyID int64) (float64, error)
	Decrement(ctx context.Context, supplyID int64, amount float64, orderID int64) (*Supply, error)
	SetStock(ctx context.Context, supplyID int64, newQuantity float64) error
	Increment(ctx context.Context, supplyID int64, amount float64) error
	InsertMovement(ctx context.Context, m *Movement) error
	MovementHistory(ctx context.Context, supplyID int64) ([]Movement, error)
}

type ledger struct {
	q db.Querier
}

func NewLedger(q db.Querier) Ledger {
	return &ledger{q: q}
}

func (l *ledger) WithTx(tx pgx.Tx) Ledger {
	return &ledger{q: tx}
}

const supplyColumns = `supply_id, name, unit_of_measure, current_stock, stock_threshold, last_cost, price, is_sellable`

func scanSupply(row pgx.Row) (*Supply, error) {
	var s Supply
	err := row.Scan(&s.ID, &s.Name, &s.UnitOfMeasure, &s.CurrentStock, &s.StockThreshold, &s.LastCost, &s.Price, &s.IsSellable)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (l *ledger) ListSupplies(ctx context.Context) ([]Supply, error) {
	rows, err := l.q.Query(ctx, `SELECT `+supplyColumns+` FROM supplies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplies: %w", err)
	}
	defer rows.Close()

	var supplies []Supply
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supply: %w", err)
		}
		supplies = append(supplies, *s)
	}
	return supplies, rows.Err()
}

func (l *ledger) GetSupply(ctx context.Context, id int64) (*Supply, error) {
	s, err := scanSupply(l.q.QueryRow(ctx, `SELECT `+supplyColumns+` FROM supplies WHERE supply_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSupplyNotFound
		}
		return nil, fmt.Errorf("failed to get supply %d: %w", id, err)
	}
	return s, nil
}

func (l *ledger) CreateSupply(ctx context.Context, s *Supply) (int64, error) {
	err := l.q.QueryRow(ctx, `
		INSERT INTO supplies (name, unit_of_measure, current_stock, stock_threshold, last_cost, price, is_sellable)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING supply_id`,
		s.Name, s.UnitOfMeasure, s.CurrentStock, s.StockThreshold, s.LastCost, s.Price, s.IsSellable).Scan(&s.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert supply: %w", err)
	}
	return s.ID, nil
}

func (l *ledger) UpdateSupply(ctx context.Context, s *Supply) error {
	tag, err := l.q.Exec(ctx, `
		UPDATE supplies SET name = $1, unit_of_measure = $2, stock_threshold = $3, last_cost = $4, price = $5, is_sellable = $6
		WHERE supply_id = $7`,
		s.Name, s.UnitOfMeasure, s.StockThreshold, s.LastCost, s.Price, s.IsSellable, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update supply %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSupplyNotFound
	}
	return nil
}

// DeleteSupply removes the supply together with any recipe rows that use it
// as an ingredient or name it as the finished product (the sellable-supply
// self-reference case).
func (l *ledger) DeleteSupply(ctx context.Context, id int64) error {
	if _, err := l.q.Exec(ctx, `DELETE FROM recipes WHERE supply_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete dependent recipes: %w", err)
	}
	tag, err := l.q.Exec(ctx, `DELETE FROM supplies WHERE supply_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete supply %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSupplyNotFound
	}
	return nil
}

func (l *ledger) Stock(ctx context.Context, supplyID int64) (float64, error) {
	var stock float64
	err := l.q.QueryRow(ctx, `SELECT current_stock FROM supplies WHERE supply_id = $1`, supplyID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSupplyNotFound
		}
		return 0, fmt.Errorf("failed to read stock for supply %d: %w", supplyID, err)
	}
	return stock, nil
}

// Decrement lowers stock by amount and appends the matching Sale movement.
// The returned supply carries the post-decrement stock level and threshold
// for alert evaluation. Stock is allowed to go negative: sufficiency was
// checked when the item was added to the order, and the ledger records what
// actually happened at close time.
func (l *ledger) Decrement(ctx context.Context, supplyID int64, amount float64, orderID int64) (*Supply, error) {
	s, err := scanSupply(l.q.QueryRow(ctx, `
		UPDATE supplies SET current_stock = current_stock - $1
		WHERE supply_id = $2
		RETURNING `+supplyColumns, amount, supplyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSupplyNotFound
		}
		return nil, fmt.Errorf("failed to decrement supply %d: %w", supplyID, err)
	}

	if err := l.InsertMovement(ctx, &Movement{
		SupplyID:       supplyID,
		OrderID:        &orderID,
		Type:           MovementSale,
		QuantityChange: -amount,
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func (l *ledger) SetStock(ctx context.Context, supplyID int64, newQuantity float64) error {
	tag, err := l.q.Exec(ctx, `UPDATE supplies SET current_stock = $1 WHERE supply_id = $2`, newQuantity, supplyID)
	if err != nil {
		return fmt.Errorf("failed to set stock for supply %d: %w", supplyID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSupplyNotFound
	}
	return nil
}

func (l *ledger) Increment(ctx context.Context, supplyID int64, amount float64) error {
	tag, err := l.q.Exec(ctx, `UPDATE supplies SET current_stock = current_stock + $1 WHERE supply_id = $2`, amount, supplyID)
	if err != nil {
		return fmt.Errorf("failed to increment supply %d: %w", supplyID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSupplyNotFound
	}
	return nil
}

func (l *ledger) InsertMovement(ctx context.Context, m *Movement) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to generate movement ID: %w", err)
	}
	m.ID = id

	_, err = l.q.Exec(ctx, `
		INSERT INTO stock_movements (movement_id, supply_id, order_id, user_id, movement_type, quantity_change, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.SupplyID, m.OrderID, m.UserID, string(m.Type), m.QuantityChange, m.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert stock movement: %w", err)
	}
	return nil
}

func (l *ledger) MovementHistory(ctx context.Context, supplyID int64) ([]Movement, error) {
	rows, err := l.q.Query(ctx, `
		SELECT sm.movement_id, sm.supply_id, sm.order_id, sm.user_id, sm.movement_type, sm.quantity_change, sm.reason, sm.created_at, u.full_name
		FROM stock_movements sm
		LEFT JOIN users u ON sm.user_id = u.user_id
		WHERE sm.supply_id = $1
		ORDER BY sm.created_at DESC`, supplyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movement history for supply %d: %w", supplyID, err)
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.SupplyID, &m.OrderID, &m.UserID, &m.Type, &m.QuantityChange, &m.Reason, &m.CreatedAt, &m.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
