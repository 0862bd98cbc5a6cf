package services

import (
	"testing"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("a", "r")
	user := &models.User{ID: 7, Email: "x@example.com"}

	access, err := m.GenerateAccessToken(user)
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(user)
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	_, err = m.ParseRefreshToken(refresh)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	user := &models.User{ID: 1}
	token, err := NewTokenManager("one", "r").GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = NewTokenManager("two", "r").ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("one", "r").ParseAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", "").GenerateAccessToken(&models.User{ID: 1})
	assert.ErrorIs(t, err, ErrNeedTokenSecret)
}
