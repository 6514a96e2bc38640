package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/doppler-bar/barpos/internal/alert"
	"github.com/doppler-bar/barpos/internal/audit"
	"github.com/doppler-bar/barpos/internal/db"
	"github.com/doppler-bar/barpos/internal/inventory"
	"github.com/doppler-bar/barpos/internal/recipe"
	"github.com/doppler-bar/barpos/internal/table"
	"github.com/doppler-bar/barpos/internal/user"
)

const (
	// A user cancelling more than this many items within anomalyWindow
	// triggers an anomaly alert. Plain count, no decay or weighting.
	anomalyThreshold = 5
	anomalyWindow    = time.Hour
)

// InsufficientStockError names the first ingredient that blocked an
// add-item call. errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	SupplyName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock to prepare the product, missing: %s", e.SupplyName)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

type Service interface {
	OpenOrder(ctx context.Context, tableID *int64, userID int64, trainingMode bool) (*Order, error)
	ListOpenOrders(ctx context.Context) ([]OpenOrderSummary, error)
	OrderItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	AddItem(ctx context.Context, item *OrderItem) (int64, error)
	CancelItem(ctx context.Context, detailID int64, reason string, actorID int64) error
	CloseOrder(ctx context.Context, orderID int64, method string, amount float64, trainingMode bool) error
	AssociateCustomer(ctx context.Context, orderID, customerID int64) error
	PrioritizeOrder(ctx context.Context, orderID int64) error

	KDSOrders(ctx context.Context, station *string) ([]KDSOrder, error)
	PendingSummary(ctx context.Context) ([]PendingProduct, error)
	MarkOrderReady(ctx context.Context, orderID int64) error
	MarkItemInPreparation(ctx context.Context, detailID int64) error
	MarkItemReady(ctx context.Context, detailID int64) error
}

// Deps bundles everything the order lifecycle coordinates: the order rows
// themselves, recipes, the stock ledger, alerts, the audit log, tables and
// the user directory, all joined through one transaction runner.
type Deps struct {
	Orders  Repository
	Recipes recipe.Resolver
	Ledger  inventory.Ledger
	Alerts  alert.Emitter
	Audit   audit.Repository
	Tables  table.Repository
	Users   user.Repository
	Tx      db.TxRunner
}

type service struct {
	deps Deps
	now  func() time.Time
}

func NewService(deps Deps) Service {
	return &service{deps: deps, now: time.Now}
}

// OpenOrder creates an order with a clock-derived folio and, when a table is
// given, marks that table occupied. In training mode the whole unit of work
// is rolled back after it ran, so the caller still receives the generated
// order while nothing is persisted.
func (s *service) OpenOrder(ctx context.Context, tableID *int64, userID int64, trainingMode bool) (*Order, error) {
	order := &Order{
		Folio:   GenerateFolio(s.now()),
		TableID: tableID,
		UserID:  userID,
	}

	err := s.deps.Tx.RunInTxDiscard(ctx, trainingMode, func(tx pgx.Tx) error {
		if tableID != nil {
			if err := s.deps.Tables.WithTx(tx).SetStatus(ctx, *tableID, table.StatusOccupied); err != nil {
				return err
			}
		}
		_, err := s.deps.Orders.WithTx(tx).CreateOrder(ctx, order)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to open order: %w", err)
	}

	log.Info().
		Int64("order_id", order.ID).
		Str("folio", order.Folio).
		Bool("training_mode", trainingMode).
		Msg("Order opened")
	return order, nil
}

func (s *service) ListOpenOrders(ctx context.Context) ([]OpenOrderSummary, error) {
	return s.deps.Orders.ListOpenOrders(ctx)
}

func (s *service) OrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	return s.deps.Orders.ListItems(ctx, orderID)
}

// AddItem gates the write on a recipe-driven availability check: every
// ingredient must cover quantity_used * requested quantity, and the first
// one that cannot fails the whole call before anything is written. Products
// without a recipe carry no stock dependency and always pass.
func (s *service) AddItem(ctx context.Context, item *OrderItem) (int64, error) {
	order, err := s.deps.Orders.GetOrder(ctx, item.OrderID)
	if err != nil {
		return 0, err
	}
	if order.Status != StatusOpen {
		return 0, ErrOrderNotOpen
	}

	err = s.deps.Tx.RunInTx(ctx, func(tx pgx.Tx) error {
		components, err := s.deps.Recipes.WithTx(tx).Resolve(ctx, item.ProductID)
		if err != nil {
			return err
		}

		ledger := s.deps.Ledger.WithTx(tx)
		for _, c := range components {
			supply, err := ledger.GetSupply(ctx, c.SupplyID)
			if err != nil {
				if errors.Is(err, inventory.ErrSupplyNotFound) {
					return &InsufficientStockError{SupplyName: "unknown ingredient"}
				}
				return err
			}
			if supply.CurrentStock < c.QuantityUsed*float64(item.Quantity) {
				return &InsufficientStockError{SupplyName: supply.Name}
			}
		}

		_, err = s.deps.Orders.WithTx(tx).InsertItem(ctx, item)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return 0, err
		}
		return 0, fmt.Errorf("service: failed to add item to order %d: %w", item.OrderID, err)
	}

	log.Info().
		Int64("order_id", item.OrderID).
		Int64("product_id", item.ProductID).
		Int("quantity", item.Quantity).
		Msg("Item added to order")
	return item.DetailID, nil
}

// CancelItem removes an order line, audits who did it and why, then counts
// the actor's cancellations over the last hour. Crossing the threshold
// emits exactly one anomaly alert for this cancellation.
func (s *service) CancelItem(ctx context.Context, detailID int64, reason string, actorID int64) error {
	actor, err := s.deps.Users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrPermissionDenied
		}
		return fmt.Errorf("service: failed to look up cancelling user: %w", err)
	}
	if actor.RoleID == user.RoleStaff {
		return ErrPermissionDenied
	}

	err = s.deps.Tx.RunInTx(ctx, func(tx pgx.Tx) error {
		orders := s.deps.Orders.WithTx(tx)
		auditLog := s.deps.Audit.WithTx(tx)

		info, err := orders.CancelledItemInfo(ctx, detailID)
		if err != nil {
			return err
		}

		if err := orders.DeleteItem(ctx, detailID); err != nil {
			return err
		}

		details := map[string]any{
			"order_id":          info.OrderID,
			"product_cancelled": info.ProductName,
			"reason":            reason,
		}
		if err := auditLog.Record(ctx, actorID, audit.ActionCancelOrderItem, details); err != nil {
			return err
		}

		count, err := auditLog.CountRecentByUserAction(ctx, actorID, audit.ActionCancelOrderItem, s.now().Add(-anomalyWindow))
		if err != nil {
			return err
		}
		if count > anomalyThreshold {
			message := fmt.Sprintf("Anomaly alert: user '%s' has cancelled %d items in the last hour.", actor.FullName, count)
			if err := s.deps.Alerts.WithTx(tx).Emit(ctx, alert.TypeAnomaly, message); err != nil {
				return err
			}
			log.Warn().Int64("user_id", actorID).Int("cancellations", count).Msg("Cancellation anomaly detected")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("service: failed to cancel item %d: %w", detailID, err)
	}

	log.Info().Int64("detail_id", detailID).Int64("user_id", actorID).Msg("Order item cancelled")
	return nil
}

// CloseOrder settles an order: every item's recipe ingredients are
// decremented (one Sale movement per item-ingredient pair), low-stock
// alerts fire for anything at or below its threshold, the payment is
// recorded, the order flips to paid and its table is freed. One
// transaction; training mode rolls all of it back while keeping the
// response. Decrements are not re-validated against sufficiency here;
// the add-time check is the only gate, and stock may go negative.
func (s *service) CloseOrder(ctx context.Context, orderID int64, method string, amount float64, trainingMode bool) error {
	order, err := s.deps.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !canTransition(order.Status, StatusPaid) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, StatusPaid)
	}

	err = s.deps.Tx.RunInTxDiscard(ctx, trainingMode, func(tx pgx.Tx) error {
		orders := s.deps.Orders.WithTx(tx)
		recipes := s.deps.Recipes.WithTx(tx)
		ledger := s.deps.Ledger.WithTx(tx)
		alerts := s.deps.Alerts.WithTx(tx)

		items, err := orders.SoldItems(ctx, orderID)
		if err != nil {
			return err
		}

		for _, item := range items {
			components, err := recipes.Resolve(ctx, item.ProductID)
			if err != nil {
				return err
			}
			for _, c := range components {
				supply, err := ledger.Decrement(ctx, c.SupplyID, c.QuantityUsed*float64(item.Quantity), orderID)
				if err != nil {
					return err
				}
				if supply.CurrentStock <= supply.StockThreshold {
					message := fmt.Sprintf("Low stock for %s: %g remaining.", supply.Name, supply.CurrentStock)
					if err := alerts.Emit(ctx, alert.TypeStock, message); err != nil {
						return err
					}
				}
			}
		}

		if err := orders.InsertPayment(ctx, &Payment{
			OrderID:       orderID,
			Method:        method,
			Amount:        amount,
			ProcessedByID: order.UserID,
		}); err != nil {
			return err
		}

		if err := orders.MarkPaid(ctx, orderID); err != nil {
			return err
		}

		if order.TableID != nil {
			if err := s.deps.Tables.WithTx(tx).SetStatus(ctx, *order.TableID, table.StatusFree); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("service: failed to close order %d: %w", orderID, err)
	}

	log.Info().
		Int64("order_id", orderID).
		Str("payment_method", method).
		Float64("amount", amount).
		Bool("training_mode", trainingMode).
		Msg("Order closed and paid")
	return nil
}

func (s *service) AssociateCustomer(ctx context.Context, orderID, customerID int64) error {
	return s.deps.Orders.SetCustomer(ctx, orderID, customerID)
}

func (s *service) PrioritizeOrder(ctx context.Context, orderID int64) error {
	return s.deps.Orders.SetPriority(ctx, orderID)
}

func (s *service) KDSOrders(ctx context.Context, station *string) ([]KDSOrder, error) {
	return s.deps.Orders.ActiveKDSOrders(ctx, station)
}

func (s *service) PendingSummary(ctx context.Context) ([]PendingProduct, error) {
	return s.deps.Orders.PendingSummary(ctx)
}

func (s *service) MarkOrderReady(ctx context.Context, orderID int64) error {
	order, err := s.deps.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !canTransition(order.Status, StatusReady) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, StatusReady)
	}

	err = s.deps.Tx.RunInTx(ctx, func(tx pgx.Tx) error {
		if err := s.deps.Orders.WithTx(tx).SetStatus(ctx, orderID, StatusReady); err != nil {
			return err
		}
		message := fmt.Sprintf("Order %s is ready for pickup!", order.Folio)
		return s.deps.Alerts.WithTx(tx).Emit(ctx, alert.TypeOrderReady, message)
	})
	if err != nil {
		return fmt.Errorf("service: failed to mark order %d ready: %w", orderID, err)
	}
	return nil
}

func (s *service) MarkItemInPreparation(ctx context.Context, detailID int64) error {
	return s.deps.Orders.SetItemStatus(ctx, detailID, ItemInPreparation)
}

func (s *service) MarkItemReady(ctx context.Context, detailID int64) error {
	err := s.deps.Tx.RunInTx(ctx, func(tx pgx.Tx) error {
		orders := s.deps.Orders.WithTx(tx)

		if err := orders.SetItemStatus(ctx, detailID, ItemReady); err != nil {
			return err
		}

		info, err := orders.ItemInfo(ctx, detailID)
		if err != nil {
			return err
		}
		message := fmt.Sprintf("Item ready: '%s' from order %s.", info.ProductName, info.OrderFolio)
		return s.deps.Alerts.WithTx(tx).Emit(ctx, alert.TypeItemReady, message)
	})
	if err != nil {
		return fmt.Errorf("service: failed to mark item %d ready: %w", detailID, err)
	}
	return nil
}
