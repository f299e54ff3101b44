package application

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/go-ecommerce-auth/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-auth/internal/domain/repository"
)

const purposeActivation = "activation"

type activationClaims struct {
	UserID  string `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type resetClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies activation and password reset tokens.
// Neither kind is stored: activation tokens are checked against the secret
// and expiry, reset tokens against a key derived from the user's current
// password hash, so changing the password revokes them.
type TokenService struct {
	users         repo.UserRepository
	secret        []byte
	activationTTL time.Duration
	resetTTL      time.Duration
	now           func() time.Time
}

func NewTokenService(users repo.UserRepository, secret string, activationTTL, resetTTL time.Duration) *TokenService {
	return &TokenService{
		users:         users,
		secret:        []byte(secret),
		activationTTL: activationTTL,
		resetTTL:      resetTTL,
		now:           time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
}

func (s *TokenService) IssueActivationToken(u *entity.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.activationTTL)
	claims := &activationClaims{
		UserID:  u.ID,
		Purpose: purposeActivation,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return tok, exp, err
}

// VerifyActivationToken returns the pending user a token was issued for.
// An authentic token past its expiry always yields ErrTokenExpired.
func (s *TokenService) VerifyActivationToken(ctx context.Context, token string) (*entity.User, error) {
	claims := &activationClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, s.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if claims.Purpose != purposeActivation || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.IsActive {
		return nil, ErrAlreadyVerified
	}
	return u, nil
}

// resetKey binds reset tokens to the user's current credentials.
func (s *TokenService) resetKey(u *entity.User) []byte {
	key := make([]byte, 0, len(s.secret)+len(u.ID)+len(u.Password)+2)
	key = append(key, s.secret...)
	key = append(key, 0)
	key = append(key, u.ID...)
	key = append(key, 0)
	return append(key, u.Password...)
}

func (s *TokenService) IssueResetToken(u *entity.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.resetTTL)
	claims := &resetClaims{
		UID: u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.resetKey(u))
	return tok, exp, err
}

// VerifyResetToken reports whether token was issued for u in its current
// state. Wrong user, stale password, bad signature and expiry all return
// false with a nil error; only structurally malformed input is an error.
func (s *TokenService) VerifyResetToken(u *entity.User, token string) (bool, error) {
	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.resetKey(u), nil
	}, s.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return false, ErrTokenMalformed
		}
		return false, nil
	}
	return claims.UID == u.ID, nil
}
