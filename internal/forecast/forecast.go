// Package forecast predicts expected order volume per weekday from a
// trained weights file and derives occupancy from it. Training itself
// happens out of process; this package only consumes the result.
package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Model yields the expected number of orders for a weekday.
type Model interface {
	Predict(day time.Weekday) (float64, error)
}

// Demand is the weekly outlook returned to clients.
type Demand struct {
	Day            string  `json:"day"`
	ExpectedOrders float64 `json:"expected_orders"`
}

type Occupancy struct {
	Day            string  `json:"day"`
	ExpectedPeople float64 `json:"expected_people"`
	OccupancyPct   float64 `json:"occupancy_pct"`
	CapacityLimit  int     `json:"capacity_limit"`
}

// DatePrediction answers "how many orders do we expect on this date".
type DatePrediction struct {
	Date            string `json:"date"`
	PredictedOrders int    `json:"predicted_orders"`
}

type OccupancyPrediction struct {
	Date               string `json:"date"`
	PredictedCustomers int    `json:"predicted_customers"`
	OccupancyPct       int    `json:"occupancy_percentage"`
}

// weightsModel reads per-weekday averages from a JSON file produced by the
// training job. The file maps weekday index (0=Sunday) to expected orders.
type weightsModel struct {
	path string
}

func NewWeightsModel(path string) Model {
	return &weightsModel{path: path}
}

func (m *weightsModel) Predict(day time.Weekday) (float64, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return 0, fmt.Errorf("forecast: failed to read weights: %w", err)
	}

	var weights map[string]float64
	if err := json.Unmarshal(data, &weights); err != nil {
		return 0, fmt.Errorf("forecast: failed to parse weights: %w", err)
	}

	return weights[fmt.Sprintf("%d", int(day))], nil
}

type Service interface {
	DemandFor(date time.Time) (*DatePrediction, error)
	OccupancyFor(date time.Time) (*OccupancyPrediction, error)
	WeeklyDemand() ([]Demand, error)
	WeeklyOccupancy() ([]Occupancy, error)
	Retrain() error
}

type service struct {
	model         Model
	retrainCmd    string
	capacityLimit int
	// people expected per predicted order
	partyFactor float64
}

func NewService(model Model, retrainCmd string, capacityLimit int) Service {
	return &service{
		model:         model,
		retrainCmd:    retrainCmd,
		capacityLimit: capacityLimit,
		partyFactor:   2.5,
	}
}

// DemandFor predicts order volume for one calendar date, rounded to whole
// orders the way the terminals display it.
func (s *service) DemandFor(date time.Time) (*DatePrediction, error) {
	expected, err := s.model.Predict(date.Weekday())
	if err != nil {
		return nil, err
	}
	return &DatePrediction{
		Date:            date.Format("2006-01-02"),
		PredictedOrders: int(math.Round(expected)),
	}, nil
}

func (s *service) OccupancyFor(date time.Time) (*OccupancyPrediction, error) {
	expected, err := s.model.Predict(date.Weekday())
	if err != nil {
		return nil, err
	}

	people := int(math.Round(expected * s.partyFactor))
	pct := 0.0
	if s.capacityLimit > 0 {
		pct = float64(people) / float64(s.capacityLimit) * 100
		if pct > 100 {
			pct = 100
		}
	}
	return &OccupancyPrediction{
		Date:               date.Format("2006-01-02"),
		PredictedCustomers: people,
		OccupancyPct:       int(math.Round(pct)),
	}, nil
}

func (s *service) WeeklyDemand() ([]Demand, error) {
	demand := make([]Demand, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		expected, err := s.model.Predict(day)
		if err != nil {
			return nil, err
		}
		demand = append(demand, Demand{Day: day.String(), ExpectedOrders: expected})
	}
	return demand, nil
}

// WeeklyOccupancy converts demand into headcount and a percentage of the
// configured capacity, capped at 100.
func (s *service) WeeklyOccupancy() ([]Occupancy, error) {
	demand, err := s.WeeklyDemand()
	if err != nil {
		return nil, err
	}

	occupancy := make([]Occupancy, 0, len(demand))
	for _, d := range demand {
		people := d.ExpectedOrders * s.partyFactor
		pct := 0.0
		if s.capacityLimit > 0 {
			pct = people / float64(s.capacityLimit) * 100
			if pct > 100 {
				pct = 100
			}
		}
		occupancy = append(occupancy, Occupancy{
			Day:            d.Day,
			ExpectedPeople: people,
			OccupancyPct:   pct,
			CapacityLimit:  s.capacityLimit,
		})
	}
	return occupancy, nil
}

// Retrain launches the external training job without waiting for it; the
// model picks up the new weights file on the next prediction.
func (s *service) Retrain() error {
	if s.retrainCmd == "" {
		return fmt.Errorf("forecast: no retrain command configured")
	}

	parts := strings.Fields(s.retrainCmd)
	cmd := exec.Command(parts[0], parts[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("forecast: failed to start retraining: %w", err)
	}

	log.Info().Str("command", s.retrainCmd).Int("pid", cmd.Process.Pid).Msg("Retraining started")
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Error().Err(err).Msg("Retraining job exited with error")
		} else {
			log.Info().Msg("Retraining job finished")
		}
	}()
	return nil
}
