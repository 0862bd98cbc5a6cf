package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/constants"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/models"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrNeedTokenSecret    = errors.New("cannot sign token without a secret")
	errUnexpectedTokenUse = errors.New("token used for the wrong purpose")
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// TokenClaims is the payload of both access and refresh tokens.
type TokenClaims struct {
	UserID uint64 `json:"id"`
	Email  string `json:"email"`
	Use    string `json:"use"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens. Access and refresh tokens use
// separate secrets.
type TokenManager struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a TokenManager with the default lifetimes.
func NewTokenManager(accessSecret, refreshSecret string) *TokenManager {
	return &TokenManager{
		accessKey:  []byte(accessSecret),
		refreshKey: []byte(refreshSecret),
		accessTTL:  constants.AccessTokenExpire,
		refreshTTL: constants.RefreshTokenExpire,
		now:        time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

func (m *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	return m.sign(user, tokenUseAccess, m.accessKey, m.accessTTL)
}

func (m *TokenManager) GenerateRefreshToken(user *models.User) (string, error) {
	return m.sign(user, tokenUseRefresh, m.refreshKey, m.refreshTTL)
}

// ParseAccessToken verifies an access token and returns its claims.
func (m *TokenManager) ParseAccessToken(token string) (*TokenClaims, error) {
	return m.parse(token, tokenUseAccess, m.accessKey)
}

// ParseRefreshToken verifies a refresh token and returns its claims.
func (m *TokenManager) ParseRefreshToken(token string) (*TokenClaims, error) {
	return m.parse(token, tokenUseRefresh, m.refreshKey)
}

func (m *TokenManager) sign(user *models.User, use string, key []byte, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", ErrNeedTokenSecret
	}

	now := m.now()
	claims := TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Use:    use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) parse(token, use string, key []byte) (*TokenClaims, error) {
	if len(key) == 0 {
		return nil, ErrNeedTokenSecret
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Use != use {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, errUnexpectedTokenUse)
	}
	return claims, nil
}
