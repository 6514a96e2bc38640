package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/doppler-bar/barpos/internal/event"
)

type mockEventRepo struct {
	CreateFunc func(ctx context.Context, e *event.Event) (int64, error)
}

func (m *mockEventRepo) ListActive(ctx context.Context) ([]event.Event, error) { return nil, nil }

func (m *mockEventRepo) Create(ctx context.Context, e *event.Event) (int64, error) {
	return m.CreateFunc(ctx, e)
}

func (m *mockEventRepo) Delete(ctx context.Context, id int64) error { return nil }

func (m *mockEventRepo) ArchivePast(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newEventRouter(repo event.Repository) chi.Router {
	router := chi.NewRouter()
	NewEventHandler(repo).RegisterRoutes(router)
	return router
}

func TestEventHandler_Create(t *testing.T) {
	t.Run("past_date_rejected", func(t *testing.T) {
		created := false
		router := newEventRouter(&mockEventRepo{
			CreateFunc: func(ctx context.Context, e *event.Event) (int64, error) {
				created = true
				return 1, nil
			},
		})

		body := `{"name": "Salsa Night", "event_date": "2020-01-01"}`
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, created, "past-dated event must not be persisted")
	})

	t.Run("future_date_created", func(t *testing.T) {
		var got *event.Event
		router := newEventRouter(&mockEventRepo{
			CreateFunc: func(ctx context.Context, e *event.Event) (int64, error) {
				got = e
				e.ID = 3
				return 3, nil
			},
		})

		date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
		body := fmt.Sprintf(`{"name": "Salsa Night", "event_date": %q}`, date)
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NotNil(t, got)
		assert.Equal(t, "Salsa Night", got.Name)
	})

	t.Run("today_accepted", func(t *testing.T) {
		router := newEventRouter(&mockEventRepo{
			CreateFunc: func(ctx context.Context, e *event.Event) (int64, error) { return 4, nil },
		})

		date := time.Now().UTC().Format("2006-01-02")
		body := fmt.Sprintf(`{"name": "Trivia", "event_date": %q}`, date)
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}
