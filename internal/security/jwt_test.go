package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-32-chars!!"

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := NewJWTManager(testSecret, 15*time.Minute)

	token, err := manager.GenerateAccessToken(7, "ann@example.com", "Ann")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, "Ann", claims.Name)
	assert.Equal(t, 15*time.Minute, manager.AccessTokenTTL())
}

func TestJWTManager_Rejects(t *testing.T) {
	manager := NewJWTManager(testSecret, 15*time.Minute)
	valid, err := manager.GenerateAccessToken(7, "", "")
	require.NoError(t, err)

	other := NewJWTManager("another-secret-key-32-characters", 15*time.Minute)
	foreign, err := other.GenerateAccessToken(7, "", "")
	require.NoError(t, err)

	expiring := NewJWTManager(testSecret, time.Minute)
	expiring.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiring.GenerateAccessToken(7, "", "")
	require.NoError(t, err)

	noUser, err := manager.GenerateAccessToken(0, "", "")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		valid bool
	}{
		{"valid", valid, true},
		{"garbage", "not-a-token", false},
		{"wrong secret", foreign, false},
		{"expired", expired, false},
		{"missing user", noUser, false},
		{"unsigned", unsigned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.ValidateAccessToken(tt.token)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", time.Minute).GenerateAccessToken(1, "", "")
	assert.Error(t, err)
}
