// Package event tracks promotional events and retires them automatically
// once their date has passed.
package event

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Archiver runs the nightly cleanup that moves yesterday's events out of
// the active list.
type Archiver struct {
	repo Repository
	cron *cron.Cron
}

func NewArchiver(repo Repository) *Archiver {
	return &Archiver{repo: repo, cron: cron.New()}
}

// Start schedules the archival pass at 02:00 local time every day. Call
// Stop to drain the scheduler on shutdown.
func (a *Archiver) Start() error {
	_, err := a.cron.AddFunc("0 2 * * *", func() {
		a.ArchiveOnce(context.Background())
	})
	if err != nil {
		return err
	}
	a.cron.Start()
	log.Info().Msg("Event archiver scheduled for 02:00 daily")
	return nil
}

func (a *Archiver) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
}

// ArchiveOnce archives everything dated before today. A failed pass is
// logged and retried on the next tick.
func (a *Archiver) ArchiveOnce(ctx context.Context) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	archived, err := a.repo.ArchivePast(ctx, today)
	if err != nil {
		log.Error().Err(err).Msg("Event archival pass failed")
		return
	}
	if archived > 0 {
		log.Info().Int64("archived", archived).Msg("Archived past events")
	}
}
