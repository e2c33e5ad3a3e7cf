package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studyhub/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5433"
	cfg.Database.User = "study"
	cfg.Database.Password = "secret"
	cfg.Database.DBName = "studyhub"
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 2
	cfg.Database.ConnMaxLifetime = "30m"
	cfg.Database.ConnectTimeout = "2s"
	return cfg
}

func TestNewPoolConfig(t *testing.T) {
	poolConfig, err := NewPoolConfig(testConfig())

	require.NoError(t, err)
	assert.Equal(t, int32(10), poolConfig.MaxConns)
	assert.Equal(t, int32(2), poolConfig.MinConns)
	assert.Equal(t, 30*time.Minute, poolConfig.MaxConnLifetime)
	assert.Equal(t, "db.internal", poolConfig.ConnConfig.Host)
	assert.Equal(t, uint16(5433), poolConfig.ConnConfig.Port)
	assert.Equal(t, "study", poolConfig.ConnConfig.User)
	assert.Equal(t, "studyhub", poolConfig.ConnConfig.Database)
}

func TestNewPoolConfigClampsIdleConnections(t *testing.T) {
	cfg := testConfig()
	cfg.Database.MaxOpenConns = 3
	cfg.Database.MaxIdleConns = 8

	poolConfig, err := NewPoolConfig(cfg)

	require.NoError(t, err)
	assert.Equal(t, int32(3), poolConfig.MinConns)
}

func TestNewPoolConfigFallsBackOnBadLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.Database.ConnMaxLifetime = "forever"

	poolConfig, err := NewPoolConfig(cfg)

	require.NoError(t, err)
	assert.Equal(t, time.Hour, poolConfig.MaxConnLifetime)
}

func TestNewPoolConfigRejectsBadHost(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Port = "not-a-port"

	_, err := NewPoolConfig(cfg)

	assert.ErrorContains(t, err, "failed to parse pgxpool config")
}
