package recipe

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/doppler-bar/barpos/internal/db"
)

// Resolver looks up the ingredient list behind a sellable product. Products
// without a recipe resolve to an empty slice; that means "no stock
// dependency", not an error.
type Resolver interface {
	WithTx(tx pgx.Tx) Resolver
	Resolve(ctx context.Context, productID int64) ([]Component, error)
	ResolveDetailed(ctx context.Context, productID int64) ([]Component, error)
	AddComponent(ctx context.Context, productID, supplyID int64, quantityUsed float64) (int64, error)
	RemoveComponent(ctx context.Context, recipeID int64) error
	Cost(ctx context.Context, productID int64) (float64, error)
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Resolver {
	return &repository{q: q}
}

func (r *repository) WithTx(tx pgx.Tx) Resolver {
	return &repository{q: tx}
}

func (r *repository) Resolve(ctx context.Context, productID int64) ([]Component, error) {
	rows, err := r.q.Query(ctx,
		`SELECT supply_id, quantity_used FROM recipes WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipe for product %d: %w", productID, err)
	}
	defer rows.Close()

	var components []Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.SupplyID, &c.QuantityUsed); err != nil {
			return nil, fmt.Errorf("failed to scan recipe component: %w", err)
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

// ResolveDetailed joins supply names and units for display surfaces.
func (r *repository) ResolveDetailed(ctx context.Context, productID int64) ([]Component, error) {
	rows, err := r.q.Query(ctx, `
		SELECT r.recipe_id, r.supply_id, s.name, r.quantity_used, s.unit_of_measure
		FROM recipes r
		JOIN supplies s ON r.supply_id = s.supply_id
		WHERE r.product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe for product %d: %w", productID, err)
	}
	defer rows.Close()

	var components []Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.RecipeID, &c.SupplyID, &c.SupplyName, &c.QuantityUsed, &c.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan recipe component: %w", err)
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (r *repository) AddComponent(ctx context.Context, productID, supplyID int64, quantityUsed float64) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx,
		`INSERT INTO recipes (product_id, supply_id, quantity_used) VALUES ($1, $2, $3) RETURNING recipe_id`,
		productID, supplyID, quantityUsed).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add recipe component: %w", err)
	}
	return id, nil
}

func (r *repository) RemoveComponent(ctx context.Context, recipeID int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM recipes WHERE recipe_id = $1`, recipeID)
	if err != nil {
		return fmt.Errorf("failed to remove recipe component %d: %w", recipeID, err)
	}
	return nil
}

// Cost sums quantity_used * last_cost over the recipe. Products without a
// recipe (or without supply costs) cost zero.
func (r *repository) Cost(ctx context.Context, productID int64) (float64, error) {
	var cost *float64
	err := r.q.QueryRow(ctx, `
		SELECT SUM(r.quantity_used * s.last_cost)
		FROM recipes r
		JOIN supplies s ON r.supply_id = s.supply_id
		WHERE r.product_id = $1`, productID).Scan(&cost)
	if err != nil {
		return 0, fmt.Errorf("failed to compute recipe cost for product %d: %w", productID, err)
	}
	if cost == nil {
		return 0, nil
	}
	return *cost, nil
}
