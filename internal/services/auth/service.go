// Package auth issues and verifies operator tokens. The rest of the
// system trusts the verified identity without re-checking it.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	// Login verifies an operator password and returns a signed token.
	Login(ctx context.Context, wallet, password string) (string, error)
	// ParseToken validates a token and returns its claims.
	ParseToken(tokenString string) (*models.UserClaims, error)
}

type service struct {
	balances balance.Service
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new auth service.
func NewService(balances balance.Service, secret string, tokenTTL time.Duration) Service {
	if balances == nil {
		panic("balance service is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &service{
		balances: balances,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (s *service) Login(ctx context.Context, wallet, password string) (string, error) {
	user, err := s.balances.GetUserByWallet(ctx, wallet)
	if err != nil {
		zap.L().Info("login failed: unknown wallet", zap.String("wallet", wallet))
		return "", ErrInvalidCredentials
	}
	if user.PasswordHash == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		zap.L().Info("login failed: bad password", zap.String("wallet", user.Wallet))
		return "", ErrInvalidCredentials
	}

	claims := &models.UserClaims{
		UserID: user.ID,
		Wallet: user.Wallet,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *service) ParseToken(tokenString string) (*models.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
