package attendance

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPIN = errors.New("pin does not match any active employee")

const (
	DirectionIn  = "clock_in"
	DirectionOut = "clock_out"
)

// ClockResult reports which employee punched and in which direction.
type ClockResult struct {
	UserID    int64  `json:"user_id"`
	Direction string `json:"direction"`
}

type Service interface {
	// ClockInOut matches the PIN against every active employee and toggles
	// their open shift: no open record starts one, an open record closes.
	ClockInOut(ctx context.Context, pin string) (*ClockResult, error)
	Report(ctx context.Context, start, end time.Time, userID *int64) ([]ReportRow, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) ClockInOut(ctx context.Context, pin string) (*ClockResult, error) {
	pins, err := s.repo.ActivePINs(ctx)
	if err != nil {
		return nil, err
	}

	var userID int64
	found := false
	for _, p := range pins {
		if bcrypt.CompareHashAndPassword([]byte(p.PINHash), []byte(pin)) == nil {
			userID = p.UserID
			found = true
			break
		}
	}
	if !found {
		return nil, ErrInvalidPIN
	}

	open, err := s.repo.OpenRecord(ctx, userID)
	if err != nil {
		return nil, err
	}

	if open != nil {
		if err := s.repo.ClockOut(ctx, open.ID, s.now()); err != nil {
			return nil, err
		}
		return &ClockResult{UserID: userID, Direction: DirectionOut}, nil
	}

	if _, err := s.repo.ClockIn(ctx, userID, s.now()); err != nil {
		return nil, err
	}
	return &ClockResult{UserID: userID, Direction: DirectionIn}, nil
}

func (s *service) Report(ctx context.Context, start, end time.Time, userID *int64) ([]ReportRow, error) {
	return s.repo.Report(ctx, start, end, userID)
}
