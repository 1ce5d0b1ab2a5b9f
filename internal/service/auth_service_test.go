package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hornethelper/internal/model"
)

func TestAuthServiceTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("secret", "signin", time.Hour)
	user := &model.User{UID: "u1", DisplayName: "Ana", PhotoURL: "http://x/a.png"}

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, model.Participant{UID: "u1", DisplayName: "Ana", PhotoURL: "http://x/a.png"}, claims.Participant())
}

func TestAuthServiceRejectsExpiredAndForeignTokens(t *testing.T) {
	svc := NewAuthService("secret", "signin", time.Hour)
	token, err := svc.IssueToken(&model.User{UID: "u1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService("other", "signin", time.Hour)
	_, err = other.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckSigninSecret(t *testing.T) {
	svc := NewAuthService("secret", "signin", 0)
	require.NoError(t, svc.CheckSigninSecret("signin"))
	require.ErrorIs(t, svc.CheckSigninSecret("nope"), ErrInvalidCredentials)
}
