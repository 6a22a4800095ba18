package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DefaultXPBase, cfg.XPBase)
	assert.Equal(t, DefaultXPMultiplier, cfg.XPMultiplier)
	assert.Equal(t, DefaultMaxUnlockLevel, cfg.MaxUnlockLevel)
	assert.Equal(t, StoreBackendMemory, cfg.StoreBackend)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.False(t, cfg.DiscountActive)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("XP_BASE", "100")
	t.Setenv("XP_MULTIPLIER", "1.25")
	t.Setenv("DISCOUNT_ACTIVE", "true")
	t.Setenv("DISCOUNT_MULTIPLIER", "0.8")
	t.Setenv("TICK_INTERVAL_SECONDS", "5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 100, cfg.XPBase)
	assert.Equal(t, 1.25, cfg.XPMultiplier)
	assert.True(t, cfg.DiscountActive)
	assert.Equal(t, 0.8, cfg.DiscountMultiplier)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := Load()

	assert.Error(t, err)
}

func TestValidate_MultiplierMustGrow(t *testing.T) {
	t.Setenv("XP_MULTIPLIER", "1.0")

	_, err := Load()

	assert.Error(t, err)
}

func TestValidate_DiscountRange(t *testing.T) {
	t.Setenv("DISCOUNT_MULTIPLIER", "1.5")

	_, err := Load()

	assert.Error(t, err)
}

func TestValidate_UnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")

	_, err := Load()

	assert.Error(t, err)
}

func TestValidate_BuildMinutesRange(t *testing.T) {
	t.Setenv("MIN_BUILD_MINUTES", "100")
	t.Setenv("MAX_BUILD_MINUTES", "10")

	_, err := Load()

	assert.Error(t, err)
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d"}

	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.GetDBConnString())
}
