package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studyhub/internal/app/models"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	BcryptCost = bcrypt.MinCost
}

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		ResetTokenExp:  10 * time.Minute,
		TokenIssuer:    "studyhub-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	user := &models.User{ID: "7", Username: "kim", Role: models.RoleAdmin}

	token, expiresIn, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, "kim", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "studyhub-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestAccessTokenDefaultsRoleToUser(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateAccessToken(&models.User{ID: "1", Username: "lee"})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.GenerateAccessToken(&models.User{ID: "1", Username: "lee"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenSignedWithOtherSecret(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour})
	token, _, err := other.GenerateAccessToken(&models.User{ID: "1", Username: "lee"})
	require.NoError(t, err)

	_, err = newTestService().ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnsignedTokenRejected(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "1", Purpose: PurposeAccess}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestService().ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetTokenIsBoundToPurposeAndUser(t *testing.T) {
	svc := newTestService()

	reset, err := svc.GeneratePasswordResetToken("kim")
	require.NoError(t, err)

	assert.NoError(t, svc.ValidateResetToken(reset, "kim"))
	assert.ErrorIs(t, svc.ValidateResetToken(reset, "lee"), ErrInvalidToken)

	_, err = svc.ValidateAccessToken(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, _, err := svc.GenerateAccessToken(&models.User{ID: "1", Username: "kim"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ValidateResetToken(access, "kim"), ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def", "abc.def", false},
		{"abc.def", "abc.def", false},
		{"", "", true},
		{"Bearer ", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFormat, tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}

func TestSecurityAnswer(t *testing.T) {
	hash, err := HashSecurityAnswer("  Seoul City ")
	require.NoError(t, err)

	assert.True(t, CheckSecurityAnswer(hash, "seoulcity"))
	assert.True(t, CheckSecurityAnswer(hash, "SEOUL city"))
	assert.False(t, CheckSecurityAnswer(hash, "busan"))
	assert.False(t, CheckSecurityAnswer(hash, "   "))
}

func TestSecurityAnswerPlaintextFallback(t *testing.T) {
	assert.True(t, CheckSecurityAnswer("Blue Whale", "bluewhale"))
	assert.False(t, CheckSecurityAnswer("Blue Whale", "blue"))
	assert.False(t, CheckSecurityAnswer("", ""))
}
