package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TxRunner runs a unit of work inside a single transaction. Services depend
// on this interface instead of beginning transactions themselves, so tests
// can substitute a runner that skips the database entirely.
type TxRunner interface {
	// RunInTx begins a transaction, runs fn, and commits on success.
	// Any error or panic rolls the transaction back.
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error

	// RunInTxDiscard behaves like RunInTx, except that when discard is set
	// the transaction is rolled back instead of committed even though fn
	// succeeded. fn still executes in full, so any results it produced
	// (generated ids, fetched rows) remain visible to the caller. This is
	// the training-mode contract: rehearse the write, keep the response,
	// persist nothing.
	RunInTxDiscard(ctx context.Context, discard bool, fn func(tx pgx.Tx) error) error
}

func (p *Postgres) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return p.RunInTxDiscard(ctx, false, fn)
}

func (p *Postgres) RunInTxDiscard(ctx context.Context, discard bool, fn func(tx pgx.Tx) error) (err error) {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Msg("Panic recovered inside transaction, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if discard {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to discard transaction")
			return fmt.Errorf("failed to discard transaction: %w", rbErr)
		}
		return nil
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return fmt.Errorf("failed to commit transaction: %w", commitErr)
	}
	return nil
}
