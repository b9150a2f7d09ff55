package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_NAME", "estoque_test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "estoque_test", cfg.DB.DBName)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "estoque", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/estoque?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://other/db"
	assert.Equal(t, "postgres://other/db", c.ConnectionString())
}

func TestValidate(t *testing.T) {
	base := Config{
		DB:   DBConfig{Port: 5432, MaxConns: 10, MinConns: 1},
		HTTP: HTTPConfig{Port: 8080},
		Log:  LogConfig{Level: "info"},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.HTTP.Port = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Log.Level = "loud"
	assert.Error(t, bad.Validate())

	bad = base
	bad.DB.MinConns = 20
	assert.Error(t, bad.Validate())

	bad = base
	bad.DB.MaxConns = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.DB.Port = -1
	bad.DB.DatabaseURL = "postgres://x/y"
	assert.NoError(t, bad.Validate())
}

func TestLoad_PoolLimits(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("DB_MIN_CONNS", "4")
	t.Setenv("DB_MAX_CONN_LIFETIME", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int32(40), cfg.DB.MaxConns)
	assert.Equal(t, int32(4), cfg.DB.MinConns)
	assert.Equal(t, 30*time.Minute, cfg.DB.MaxConnLifetime)
	assert.Equal(t, 15*time.Minute, cfg.DB.MaxConnIdleTime)
}
