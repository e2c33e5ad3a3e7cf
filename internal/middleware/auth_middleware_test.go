package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/recordstore"
)

type authFixture struct {
	router *gin.Engine
	jwt    *auth.JWTService
	users  repositories.IUserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store, err := recordstore.Open(t.TempDir(), recordstore.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	users := repositories.NewLocalUserRepository(store)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		ResetTokenExp:  time.Minute,
		TokenIssuer:    "studyhub-test",
	})

	m := NewAuthMiddleware(jwtService, users, zerolog.Nop())
	router := gin.New()
	protected := router.Group("/", m.JWTAuth())
	protected.GET("/me", func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": CurrentRole(c)})
	})
	protected.GET("/admin", m.AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return &authFixture{router: router, jwt: jwtService, users: users}
}

func (f *authFixture) createUser(t *testing.T, username string, role models.Role) (*models.User, string) {
	t.Helper()
	user := &models.User{Username: username, Password: "hash", Name: username, Role: role}
	require.NoError(t, f.users.Create(context.Background(), user))
	token, _, err := f.jwt.GenerateAccessToken(user)
	require.NoError(t, err)
	return user, token
}

func (f *authFixture) get(path, authorization string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	f := newAuthFixture(t)
	resetToken, err := f.jwt.GeneratePasswordResetToken("alice")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   dto.ErrorCode
	}{
		{"missing header", "", dto.ErrorCodeUnauthorized},
		{"not a jwt scheme", "Basic abc", dto.ErrorCodeInvalidToken},
		{"garbage", "Bearer not-a-jwt", dto.ErrorCodeInvalidToken},
		{"reset token", "Bearer " + resetToken, dto.ErrorCodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.get("/me", tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeEnvelope(t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestJWTAuthLoadsCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	user, token := f.createUser(t, "alice", models.RoleUser)

	rec := f.get("/me", "Bearer "+token)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"`+user.ID+`","role":"user"}`, rec.Body.String())
}

func TestJWTAuthUsesStoredRole(t *testing.T) {
	f := newAuthFixture(t)
	user, token := f.createUser(t, "alice", models.RoleUser)

	assert.Equal(t, http.StatusForbidden, f.get("/admin", "Bearer "+token).Code)

	user.Role = models.RoleAdmin
	require.NoError(t, f.users.Update(context.Background(), user))

	assert.Equal(t, http.StatusNoContent, f.get("/admin", "Bearer "+token).Code)
}

func TestJWTAuthRejectsUnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	token, _, err := f.jwt.GenerateAccessToken(&models.User{ID: "42", Username: "ghost"})
	require.NoError(t, err)

	rec := f.get("/me", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeEnvelope(t, rec).Error.Code)
}
