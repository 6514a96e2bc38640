package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/db"
)

type Service interface {
	ListSupplies(ctx context.Context) ([]Supply, error)
	GetSupply(ctx context.Context, id int64) (*Supply, error)
	CreateSupply(ctx context.Context, s *Supply) (int64, error)
	UpdateSupply(ctx context.Context, s *Supply) error
	DeleteSupply(ctx context.Context, id int64) error
	MovementHistory(ctx context.Context, supplyID int64) ([]Movement, error)

	AdjustStock(ctx context.Context, supplyID int64, newQuantity float64, reason string, userID int64) (*Movement, error)

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreateSupplier(ctx context.Context, supplier *Supplier) (int64, error)

	ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, poID int64) (*PurchaseOrder, error)
	CreatePurchaseOrder(ctx context.Context, supplierID, createdBy int64) (int64, error)
	AddPurchaseOrderItem(ctx context.Context, item *PurchaseOrderItem) (int64, error)
	ReceivePurchaseOrder(ctx context.Context, poID int64) error
}

type service struct {
	ledger    Ledger
	purchases PurchaseRepository
	tx        db.TxRunner
}

func NewService(ledger Ledger, purchases PurchaseRepository, tx db.TxRunner) Service {
	return &service{ledger: ledger, purchases: purchases, tx: tx}
}

func (s *service) ListSupplies(ctx context.Context) ([]Supply, error) {
	return s.ledger.ListSupplies(ctx)
}

func (s *service) GetSupply(ctx context.Context, id int64) (*Supply, error) {
	return s.ledger.GetSupply(ctx, id)
}

func (s *service) CreateSupply(ctx context.Context, supply *Supply) (int64, error) {
	id, err := s.ledger.CreateSupply(ctx, supply)
	if err != nil {
		return 0, fmt.Errorf("service: failed to create supply: %w", err)
	}
	log.Info().Int64("supply_id", id).Str("name", supply.Name).Msg("Supply created")
	return id, nil
}

func (s *service) UpdateSupply(ctx context.Context, supply *Supply) error {
	return s.ledger.UpdateSupply(ctx, supply)
}

func (s *service) DeleteSupply(ctx context.Context, id int64) error {
	return s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		return s.ledger.WithTx(tx).DeleteSupply(ctx, id)
	})
}

func (s *service) MovementHistory(ctx context.Context, supplyID int64) ([]Movement, error) {
	return s.ledger.MovementHistory(ctx, supplyID)
}

// AdjustStock sets a supply to an absolute quantity. The delta against the
// current level decides the movement classification: a non-negative delta is
// a manual correction, a negative one is waste.
func (s *service) AdjustStock(ctx context.Context, supplyID int64, newQuantity float64, reason string, userID int64) (*Movement, error) {
	var movement *Movement

	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		ledger := s.ledger.WithTx(tx)

		current, err := ledger.Stock(ctx, supplyID)
		if err != nil {
			return err
		}

		delta := newQuantity - current
		movementType := MovementCorrection
		if delta < 0 {
			movementType = MovementWaste
		}

		if err := ledger.SetStock(ctx, supplyID, newQuantity); err != nil {
			return err
		}

		movement = &Movement{
			SupplyID:       supplyID,
			UserID:         &userID,
			Type:           movementType,
			QuantityChange: delta,
			Reason:         &reason,
		}
		return ledger.InsertMovement(ctx, movement)
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to adjust stock: %w", err)
	}

	log.Info().
		Int64("supply_id", supplyID).
		Float64("new_quantity", newQuantity).
		Stringer("movement_type", movement.Type).
		Msg("Stock adjusted manually")
	return movement, nil
}

func (s *service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.purchases.ListSuppliers(ctx)
}

func (s *service) CreateSupplier(ctx context.Context, supplier *Supplier) (int64, error) {
	return s.purchases.CreateSupplier(ctx, supplier)
}

func (s *service) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	return s.purchases.List(ctx)
}

func (s *service) GetPurchaseOrder(ctx context.Context, poID int64) (*PurchaseOrder, error) {
	return s.purchases.Get(ctx, poID)
}

func (s *service) CreatePurchaseOrder(ctx context.Context, supplierID, createdBy int64) (int64, error) {
	return s.purchases.Create(ctx, supplierID, createdBy)
}

func (s *service) AddPurchaseOrderItem(ctx context.Context, item *PurchaseOrderItem) (int64, error) {
	return s.purchases.AddItem(ctx, item)
}

// ReceivePurchaseOrder books every ordered quantity into stock and appends a
// purchase-receipt movement per item, then flips the order to received. One
// transaction: a failed increment leaves nothing half-received.
func (s *service) ReceivePurchaseOrder(ctx context.Context, poID int64) error {
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		ledger := s.ledger.WithTx(tx)
		purchases := s.purchases.WithTx(tx)

		items, err := purchases.Items(ctx, poID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrPurchaseOrderEmpty
		}

		for _, item := range items {
			if err := ledger.Increment(ctx, item.SupplyID, item.Quantity); err != nil {
				return err
			}
			reason := fmt.Sprintf("Receipt of purchase order #%d", poID)
			if err := ledger.InsertMovement(ctx, &Movement{
				SupplyID:       item.SupplyID,
				Type:           MovementPurchaseReceipt,
				QuantityChange: item.Quantity,
				Reason:         &reason,
			}); err != nil {
				return err
			}
		}

		return purchases.MarkReceived(ctx, poID)
	})
	if err != nil {
		return fmt.Errorf("service: failed to receive purchase order %d: %w", poID, err)
	}

	log.Info().Int64("po_id", poID).Msg("Purchase order received, stock updated")
	return nil
}
