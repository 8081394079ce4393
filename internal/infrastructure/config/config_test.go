package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 4, cfg.NotifyWorkers)
	assert.Equal(t, "storefront_accounts", cfg.Mongo.Database)
	assert.False(t, cfg.Production())
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      "secret",
		"ENV":             "production",
		"SESSION_TTL":     "30m",
		"RESET_TOKEN_TTL": "15m",
		"REDIS_DB":        "2",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestProcess_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret": {},
		"unknown driver": {"JWT_SECRET": "s", "STORE_DRIVER": "postgres"},
		"zero workers":   {"JWT_SECRET": "s", "NOTIFY_WORKERS": "0"},
		"memory in prod": {"JWT_SECRET": "s", "ENV": "production", "STORE_DRIVER": "memory"},
		"bad duration":   {"JWT_SECRET": "s", "SESSION_TTL": "soon"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Process(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
