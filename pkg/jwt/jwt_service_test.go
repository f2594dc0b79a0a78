package jwt

import (
	"testing"
	"time"

	"Go-Receipt-Vault/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T) JWTService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	return NewJWTService()
}

func TestUserTokenRoundTrip(t *testing.T) {
	service := testService(t)
	userID := uuid.New().String()

	token := service.GenerateTokenUser(userID, domain.RoleUser)
	require.NotEmpty(t, token)

	gotID, gotRole, err := service.GetUserIDByToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, gotID)
	require.Equal(t, domain.RoleUser, gotRole)
}

func TestUserTokenTampered(t *testing.T) {
	service := testService(t)

	token := service.GenerateTokenUser(uuid.New().String(), domain.RoleUser)
	_, _, err := service.GetUserIDByToken(token + "x")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, _, err = service.GetUserIDByToken("not-a-token")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerificationTokenRoundTrip(t *testing.T) {
	service := testService(t)
	userID := uuid.New().String()

	token, err := service.GenerateTokenVerification(map[string]any{"user_id": userID}, time.Hour)
	require.NoError(t, err)

	claims, err := service.ValidateTokenVerification(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims["user_id"])
}

func TestVerificationTokenExpired(t *testing.T) {
	service := testService(t)

	token, err := service.GenerateTokenVerification(map[string]any{"user_id": "x"}, -time.Minute)
	require.NoError(t, err)

	_, err = service.ValidateTokenVerification(token)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}
