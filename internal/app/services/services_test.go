package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	authz "github.com/yigit/studyhub/internal/app/auth"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/recordstore"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

// tickingClock advances one second per call so creation order is strict.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	services *Services
	repos    *repositories.Repositories
	jwt      *auth.JWTService
	ctx      context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &tickingClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store, err := recordstore.Open(t.TempDir(), recordstore.WithClock(clock.Now), recordstore.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	repos := repositories.NewLocalRepositories(store)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		ResetTokenExp:  10 * time.Minute,
		TokenIssuer:    "studyhub-test",
	})
	return &testEnv{
		services: NewServices(repos, jwtService, zerolog.Nop()),
		repos:    repos,
		jwt:      jwtService,
		ctx:      context.Background(),
	}
}

// register creates a user through the auth service and returns it as an actor
func (e *testEnv) register(t *testing.T, username string) authz.Actor {
	t.Helper()
	resp, err := e.services.AuthService.Register(e.ctx, &dto.RegisterRequest{
		Username: username,
		Password: "secret1",
		Name:     username + " name",
	})
	require.NoError(t, err)
	return authz.Actor{UserID: resp.User.ID, Role: models.RoleUser}
}

// admin registers a user and promotes it
func (e *testEnv) admin(t *testing.T, username string) authz.Actor {
	t.Helper()
	actor := e.register(t, username)
	user, err := e.repos.UserRepository.GetByID(e.ctx, actor.UserID)
	require.NoError(t, err)
	user.Role = models.RoleAdmin
	require.NoError(t, e.repos.UserRepository.Update(e.ctx, user))
	actor.Role = models.RoleAdmin
	return actor
}
