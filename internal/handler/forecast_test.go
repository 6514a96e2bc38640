package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/doppler-bar/barpos/internal/forecast"
)

type mockForecastService struct {
	DemandForFunc func(date time.Time) (*forecast.DatePrediction, error)
}

func (m *mockForecastService) DemandFor(date time.Time) (*forecast.DatePrediction, error) {
	return m.DemandForFunc(date)
}

func (m *mockForecastService) OccupancyFor(date time.Time) (*forecast.OccupancyPrediction, error) {
	return &forecast.OccupancyPrediction{Date: date.Format("2006-01-02")}, nil
}

func (m *mockForecastService) WeeklyDemand() ([]forecast.Demand, error)       { return nil, nil }
func (m *mockForecastService) WeeklyOccupancy() ([]forecast.Occupancy, error) { return nil, nil }
func (m *mockForecastService) Retrain() error                                 { return nil }

func newForecastRouter(svc forecast.Service) chi.Router {
	router := chi.NewRouter()
	NewForecastHandler(svc).RegisterRoutes(router)
	return router
}

func TestForecastHandler_Demand(t *testing.T) {
	t.Run("date_str_returns_single_prediction", func(t *testing.T) {
		var gotDate time.Time
		router := newForecastRouter(&mockForecastService{
			DemandForFunc: func(date time.Time) (*forecast.DatePrediction, error) {
				gotDate = date
				return &forecast.DatePrediction{Date: date.Format("2006-01-02"), PredictedOrders: 38}, nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/forecast/demand?date_str=2026-09-04", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, time.Friday, gotDate.Weekday())
		assert.JSONEq(t, `{"date": "2026-09-04", "predicted_orders": 38}`, rec.Body.String())
	})

	t.Run("malformed_date_str_is_400", func(t *testing.T) {
		router := newForecastRouter(&mockForecastService{})

		req := httptest.NewRequest(http.MethodGet, "/forecast/demand?date_str=tomorrow", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
