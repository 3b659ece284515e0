package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4021", cfg.Port)
	assert.Equal(t, "pharos-devnet", cfg.Network.Name)
	assert.Equal(t, int64(5042002), cfg.Network.ChainID)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.SweepInterval)
	assert.Equal(t, 30*time.Second, cfg.CollaboratorTimeout)
	assert.Len(t, cfg.Endpoints, 4)
	assert.Equal(t, "/yield/apy", cfg.Endpoints[0].Pattern)
	assert.Equal(t, "1000", cfg.Endpoints[0].Price)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("NETWORK", "base-sepolia")
	t.Setenv("PAY_TO", "0x1111111111111111111111111111111111111111")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, int64(84532), cfg.Network.ChainID)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.PayTo)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
}

func TestLoad_UnknownNetwork(t *testing.T) {
	t.Setenv("NETWORK", "dogecoin")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ChainIDSelectsNetwork(t *testing.T) {
	t.Setenv("NETWORK", "pharos-devnet")
	t.Setenv("CHAIN_ID", "8453")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "base", cfg.Network.Name)
}

func TestLoad_UnknownChainID(t *testing.T) {
	t.Setenv("CHAIN_ID", "1")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BreakerToggle(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.CollaboratorBreaker)

	t.Setenv("COLLABORATOR_BREAKER", "false")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.CollaboratorBreaker)
}

func TestLoad_ReleaseModeRequiresPayTo(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("PAY_TO", "0x1111111111111111111111111111111111111111")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.PayTo)
}

func TestLoad_PricingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"pattern": "/custom", "price": "42", "description": "custom data", "query": "custom.data"}
	]`), 0o644))
	t.Setenv("PRICING_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Endpoints, 1)
	assert.Equal(t, "/custom", cfg.Endpoints[0].Pattern)
	assert.Equal(t, "42", cfg.Endpoints[0].Price)
}

func TestLoad_PricingFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("PRICING_FILE", filepath.Join(t.TempDir(), "nope.json"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
		t.Setenv("PRICING_FILE", path)
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("empty table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.json")
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
		t.Setenv("PRICING_FILE", path)
		_, err := Load()
		assert.Error(t, err)
	})
}
