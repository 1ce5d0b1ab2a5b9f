package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"hornethelper/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid sign-in secret")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService issues and validates user tokens
type AuthService struct {
	jwtSecret    []byte
	signinSecret []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(jwtSecret, signinSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		jwtSecret:    []byte(jwtSecret),
		signinSecret: []byte(signinSecret),
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

// CheckSigninSecret verifies the shared client secret sent with sign-in
func (s *AuthService) CheckSigninSecret(secret string) error {
	if subtle.ConstantTimeCompare([]byte(secret), s.signinSecret) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueToken signs a token for the given user
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := s.now()
	claims := &model.UserClaims{
		UID:         user.UID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a user JWT and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.UID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
