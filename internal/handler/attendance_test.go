package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/doppler-bar/barpos/internal/attendance"
)

type mockAttendanceService struct {
	ClockInOutFunc func(ctx context.Context, pin string) (*attendance.ClockResult, error)
	ReportFunc     func(ctx context.Context, start, end time.Time, userID *int64) ([]attendance.ReportRow, error)
}

func (m *mockAttendanceService) ClockInOut(ctx context.Context, pin string) (*attendance.ClockResult, error) {
	return m.ClockInOutFunc(ctx, pin)
}

func (m *mockAttendanceService) Report(ctx context.Context, start, end time.Time, userID *int64) ([]attendance.ReportRow, error) {
	return m.ReportFunc(ctx, start, end, userID)
}

func newAttendanceRouter(svc attendance.Service) chi.Router {
	router := chi.NewRouter()
	NewAttendanceHandler(svc).RegisterRoutes(router)
	return router
}

func TestAttendanceHandler_ClockInOut(t *testing.T) {
	t.Run("wrong_pin_is_401", func(t *testing.T) {
		router := newAttendanceRouter(&mockAttendanceService{
			ClockInOutFunc: func(ctx context.Context, pin string) (*attendance.ClockResult, error) {
				return nil, attendance.ErrInvalidPIN
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/attendance/clock-in-out", bytes.NewBufferString(`{"pin": "9999"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("clock_out_message", func(t *testing.T) {
		router := newAttendanceRouter(&mockAttendanceService{
			ClockInOutFunc: func(ctx context.Context, pin string) (*attendance.ClockResult, error) {
				return &attendance.ClockResult{UserID: 7, Direction: attendance.DirectionOut}, nil
			},
		})

		req := httptest.NewRequest(http.MethodPost, "/attendance/clock-in-out", bytes.NewBufferString(`{"pin": "1234"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Clock-out recorded")
	})
}

func TestAttendanceHandler_Report(t *testing.T) {
	t.Run("missing_range_is_400", func(t *testing.T) {
		router := newAttendanceRouter(&mockAttendanceService{})

		req := httptest.NewRequest(http.MethodGet, "/attendance/report", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("filters_by_user", func(t *testing.T) {
		var gotUser *int64
		router := newAttendanceRouter(&mockAttendanceService{
			ReportFunc: func(ctx context.Context, start, end time.Time, userID *int64) ([]attendance.ReportRow, error) {
				gotUser = userID
				return []attendance.ReportRow{{RecordID: 1, UserID: 7, FullName: "Ana Torres"}}, nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/attendance/report?start_date=2026-08-01&end_date=2026-08-31&user_id=7", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		if assert.NotNil(t, gotUser) {
			assert.Equal(t, int64(7), *gotUser)
		}
		assert.Contains(t, rec.Body.String(), "Ana Torres")
	})
}
