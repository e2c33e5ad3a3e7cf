package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appRepos "github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/config"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_BACKEND", backend)
	t.Setenv("STORAGE_DATA_DIR", t.TempDir())
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "1")
	t.Setenv("DB_CONNECT_TIMEOUT", "1s")
	t.Setenv("SERVER_MODE", "test")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/etc/studyhub/config.toml")
	assert.Equal(t, "/etc/studyhub/config.toml", ConfigPath())

	require.NoError(t, os.Unsetenv("CONFIG_PATH"))
	assert.Equal(t, filepath.Join("configs", "config.yaml"), ConfigPath())
}

func TestSetupStorageLocal(t *testing.T) {
	cfg := testConfig(t, config.BackendLocal)

	storage, err := SetupStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer storage.Close()

	assert.Equal(t, appRepos.BackendLocal, storage.Repos.Backend())
	assert.Nil(t, storage.DB)
	require.NotNil(t, storage.Store)
	assert.Equal(t, cfg.Storage.DataDir, storage.Store.Dir())
}

func TestSetupStorageAutoFallsBackToLocal(t *testing.T) {
	cfg := testConfig(t, config.BackendAuto)

	storage, err := SetupStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer storage.Close()

	assert.Equal(t, appRepos.BackendLocal, storage.Repos.Backend())
}

func TestSetupStoragePostgresRequiresDatabase(t *testing.T) {
	cfg := testConfig(t, config.BackendPostgres)

	_, err := SetupStorage(context.Background(), cfg, zerolog.Nop())

	assert.Error(t, err)
}

func TestSeedAdminAndRouter(t *testing.T) {
	cfg := testConfig(t, config.BackendLocal)
	cfg.Admin.Username = "admin"
	cfg.Admin.Password = "changeme"
	ctx := context.Background()

	storage, err := SetupStorage(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, SeedAdmin(ctx, cfg, storage.Repos, zerolog.Nop()))

	admin, err := storage.Repos.UserRepository.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, admin.IsAdmin())

	deps, err := BuildDependencies(cfg, storage.Repos, zerolog.Nop())
	require.NoError(t, err)
	router := SetupRouter(cfg, deps, zerolog.Nop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"local"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSeedAdminReportsInvalidAccount(t *testing.T) {
	cfg := testConfig(t, config.BackendLocal)
	cfg.Admin.Username = "admin"
	cfg.Admin.Password = "short"

	storage, err := SetupStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	err = SeedAdmin(context.Background(), cfg, storage.Repos, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create default admin")
}
