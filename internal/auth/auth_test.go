package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitializeJWT("test-secret")

	token, err := GenerateToken("user-1", "demo@example.com")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "demo@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)

	// Each token is individually identifiable
	other, err := GenerateToken("user-1", "demo@example.com")
	require.NoError(t, err)
	otherClaims, err := ValidateToken(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

func TestValidateToken_Rejects(t *testing.T) {
	InitializeJWT("test-secret")

	expired, err := generateToken("user-1", "demo@example.com", -time.Minute)
	require.NoError(t, err)

	signed, err := GenerateToken("user-1", "demo@example.com")
	require.NoError(t, err)

	InitializeJWT("another-secret")
	_, err = ValidateToken(signed)
	assert.Error(t, err, "signature from another secret")

	InitializeJWT("test-secret")
	_, err = ValidateToken(expired)
	assert.Error(t, err, "expired")

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	_, err = ValidateToken(parts[0] + "." + parts[1] + ".tampered")
	assert.Error(t, err, "tampered signature")

	_, err = ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestValidateToken_NotInitialized(t *testing.T) {
	InitializeJWT("")
	defer InitializeJWT("test-secret")

	_, err := GenerateToken("user-1", "demo@example.com")
	assert.Error(t, err)

	_, err = ValidateToken("anything")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("demo123")
	require.NoError(t, err)
	assert.NotEqual(t, "demo123", hash)

	assert.NoError(t, VerifyPassword("demo123", hash))
	assert.Error(t, VerifyPassword("wrong", hash))
}
