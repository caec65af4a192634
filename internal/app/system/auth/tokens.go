package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/apperr"
	"github.com/M-Jeevanantham/edu-event-management-erp/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL matches the seven-day login lifetime.
const DefaultTokenTTL = 7 * 24 * time.Hour

const tokenIssuer = "edu-events"

// Claims is the verified identity carried by a token.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a TokenManager. A zero ttl uses DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("jwt secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for u and returns it with its expiry.
func (m *TokenManager) Issue(u models.User) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := Claims{
		UserID: u.ID.Hex(),
		Role:   u.Role,
		Name:   u.Name,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates a token. Any failure is an
// AuthenticationError; the cause is kept for logging.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		e := apperr.Authentication("invalid or expired token")
		if errors.Is(err, jwt.ErrTokenExpired) {
			e = apperr.Authentication("token expired")
		}
		e.Err = err
		return nil, e
	}
	if !models.IsValidRole(claims.Role) || claims.UserID == "" {
		return nil, apperr.Authentication("token does not carry a valid identity")
	}
	return claims, nil
}
