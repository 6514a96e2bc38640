package reservation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doppler-bar/barpos/internal/reservation"
)

type mockRepo struct {
	setStatusFunc func(ctx context.Context, id int64, status string) (*reservation.Reservation, error)
}

func (m *mockRepo) List(ctx context.Context) ([]reservation.Reservation, error) { return nil, nil }

func (m *mockRepo) Create(ctx context.Context, r *reservation.Reservation) (int64, error) {
	r.ID = 3
	return 3, nil
}

func (m *mockRepo) SetStatus(ctx context.Context, id int64, status string) (*reservation.Reservation, error) {
	return m.setStatusFunc(ctx, id, status)
}

type mockSender struct {
	sent []string
	err  error
}

func (m *mockSender) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func TestService_Confirm(t *testing.T) {
	email := "guest@example.com"
	confirmed := &reservation.Reservation{
		ID:            3,
		CustomerName:  "Pat Guest",
		CustomerEmail: &email,
		PartySize:     4,
		ReservedFor:   time.Date(2026, time.September, 5, 20, 0, 0, 0, time.UTC),
		Status:        reservation.StatusConfirmed,
	}

	t.Run("sends_confirmation_email", func(t *testing.T) {
		repo := &mockRepo{setStatusFunc: func(ctx context.Context, id int64, status string) (*reservation.Reservation, error) {
			assert.Equal(t, reservation.StatusConfirmed, status)
			return confirmed, nil
		}}
		sender := &mockSender{}
		svc := reservation.NewService(repo, sender)

		res, err := svc.Confirm(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, reservation.StatusConfirmed, res.Status)
		assert.Equal(t, []string{"guest@example.com"}, sender.sent)
	})

	t.Run("email_failure_still_confirms", func(t *testing.T) {
		repo := &mockRepo{setStatusFunc: func(ctx context.Context, id int64, status string) (*reservation.Reservation, error) {
			return confirmed, nil
		}}
		sender := &mockSender{err: errors.New("smtp down")}
		svc := reservation.NewService(repo, sender)

		res, err := svc.Confirm(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, reservation.StatusConfirmed, res.Status)
	})

	t.Run("no_email_on_record", func(t *testing.T) {
		noMail := *confirmed
		noMail.CustomerEmail = nil
		repo := &mockRepo{setStatusFunc: func(ctx context.Context, id int64, status string) (*reservation.Reservation, error) {
			return &noMail, nil
		}}
		sender := &mockSender{}
		svc := reservation.NewService(repo, sender)

		_, err := svc.Confirm(context.Background(), 3)

		require.NoError(t, err)
		assert.Empty(t, sender.sent)
	})
}
