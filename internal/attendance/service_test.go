package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doppler-bar/barpos/internal/attendance"
)

type mockRepo struct {
	pins       []attendance.StaffPIN
	openRecord *attendance.Record
	clockedIn  []int64
	clockedOut []int64
}

func (m *mockRepo) ActivePINs(ctx context.Context) ([]attendance.StaffPIN, error) {
	return m.pins, nil
}

func (m *mockRepo) OpenRecord(ctx context.Context, userID int64) (*attendance.Record, error) {
	return m.openRecord, nil
}

func (m *mockRepo) ClockIn(ctx context.Context, userID int64, at time.Time) (int64, error) {
	m.clockedIn = append(m.clockedIn, userID)
	return 1, nil
}

func (m *mockRepo) ClockOut(ctx context.Context, recordID int64, at time.Time) error {
	m.clockedOut = append(m.clockedOut, recordID)
	return nil
}

func (m *mockRepo) Report(ctx context.Context, start, end time.Time, userID *int64) ([]attendance.ReportRow, error) {
	return nil, nil
}

func hashPIN(t *testing.T, pin string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestService_ClockInOut(t *testing.T) {
	t.Run("unknown_pin_rejected", func(t *testing.T) {
		repo := &mockRepo{pins: []attendance.StaffPIN{{UserID: 7, PINHash: hashPIN(t, "1234")}}}
		svc := attendance.NewService(repo)

		_, err := svc.ClockInOut(context.Background(), "9999")

		assert.ErrorIs(t, err, attendance.ErrInvalidPIN)
		assert.Empty(t, repo.clockedIn)
		assert.Empty(t, repo.clockedOut)
	})

	t.Run("no_open_record_clocks_in", func(t *testing.T) {
		repo := &mockRepo{pins: []attendance.StaffPIN{
			{UserID: 3, PINHash: hashPIN(t, "4321")},
			{UserID: 7, PINHash: hashPIN(t, "1234")},
		}}
		svc := attendance.NewService(repo)

		result, err := svc.ClockInOut(context.Background(), "1234")

		require.NoError(t, err)
		assert.Equal(t, int64(7), result.UserID)
		assert.Equal(t, attendance.DirectionIn, result.Direction)
		assert.Equal(t, []int64{7}, repo.clockedIn)
		assert.Empty(t, repo.clockedOut)
	})

	t.Run("open_record_clocks_out", func(t *testing.T) {
		repo := &mockRepo{
			pins:       []attendance.StaffPIN{{UserID: 7, PINHash: hashPIN(t, "1234")}},
			openRecord: &attendance.Record{ID: 55, UserID: 7, ClockIn: time.Now().Add(-6 * time.Hour)},
		}
		svc := attendance.NewService(repo)

		result, err := svc.ClockInOut(context.Background(), "1234")

		require.NoError(t, err)
		assert.Equal(t, attendance.DirectionOut, result.Direction)
		assert.Equal(t, []int64{55}, repo.clockedOut)
		assert.Empty(t, repo.clockedIn)
	})
}
