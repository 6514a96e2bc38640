package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/doppler-bar/barpos/internal/event"
)

type mockRepo struct {
	archiveFunc func(ctx context.Context, before time.Time) (int64, error)
}

func (m *mockRepo) ListActive(ctx context.Context) ([]event.Event, error) { return nil, nil }

func (m *mockRepo) Create(ctx context.Context, e *event.Event) (int64, error) { return 0, nil }

func (m *mockRepo) Delete(ctx context.Context, id int64) error { return nil }

func (m *mockRepo) ArchivePast(ctx context.Context, before time.Time) (int64, error) {
	return m.archiveFunc(ctx, before)
}

func TestArchiver_ArchiveOnce(t *testing.T) {
	t.Run("cutoff_is_start_of_today", func(t *testing.T) {
		var gotCutoff time.Time
		repo := &mockRepo{archiveFunc: func(ctx context.Context, before time.Time) (int64, error) {
			gotCutoff = before
			return 2, nil
		}}

		event.NewArchiver(repo).ArchiveOnce(context.Background())

		now := time.Now()
		wantCutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if diff := cmp.Diff(wantCutoff, gotCutoff); diff != "" {
			t.Errorf("cutoff mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("repository_error_is_swallowed", func(t *testing.T) {
		repo := &mockRepo{archiveFunc: func(ctx context.Context, before time.Time) (int64, error) {
			return 0, errors.New("db down")
		}}

		assert.NotPanics(t, func() {
			event.NewArchiver(repo).ArchiveOnce(context.Background())
		})
	})
}
