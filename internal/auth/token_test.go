package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doppler-bar/barpos/internal/auth"
)

func TestTokenIssuer(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", 8*time.Hour)

	t.Run("round_trip", func(t *testing.T) {
		// Verify checks exp against the wall clock, so issue relative to it.
		issuedAt := time.Now()
		token, err := issuer.Issue("ana@bar.local", 7, 2, issuedAt)
		require.NoError(t, err)

		claims, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "ana@bar.local", claims.Subject)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, int64(2), claims.RoleID)
		assert.Equal(t, issuedAt.Add(8*time.Hour).Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("expired", func(t *testing.T) {
		token, err := issuer.Issue("ana@bar.local", 7, 2, time.Now().Add(-9*time.Hour))
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		other := auth.NewTokenIssuer("different-secret", 8*time.Hour)
		token, err := other.Issue("ana@bar.local", 7, 2, time.Now())
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
