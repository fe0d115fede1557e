package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClaims = Claims{
	UserID:  "300000000000000001",
	GuildID: "100000000000000001",
	Role:    employee.RoleManager,
}

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken(testClaims)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), expiresAt, 5)

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	claims, err := ClaimsFromMap(decoded.PrivateClaims())
	require.NoError(t, err)
	assert.Equal(t, testClaims, claims)

	tokenType, _ := decoded.Get("type")
	assert.Equal(t, TokenTypeAccess, tokenType)
}

func TestGenerateAccessToken_InvalidExpiration(t *testing.T) {
	svc := NewJWTService("test-secret", "forever")

	_, _, err := svc.GenerateAccessToken(testClaims)
	assert.Error(t, err)
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresIn, err := svc.GenerateSSEToken(testClaims)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	claims, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, testClaims.GuildID, claims.GuildID)

	access, _, err := svc.GenerateAccessToken(testClaims)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)

	other := NewJWTService("other-secret", "1h")
	_, err = other.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestClaimsFromMap_MissingGuild(t *testing.T) {
	_, err := ClaimsFromMap(map[string]interface{}{"user_id": "300000000000000001"})
	assert.Error(t, err)
}
