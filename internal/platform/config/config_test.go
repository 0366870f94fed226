package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.RegistrarTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.PriceGatingEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("REGISTRAR_API_KEY", "key-123")
	t.Setenv("DOMAIN_PRICE_LIMIT", "15.00")
	t.Setenv("SLACK_TEAM_ROSTER", "U01, U02,,U03,U01")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "key-123", cfg.RegistrarAPIKey)
	assert.True(t, cfg.PriceGatingEnabled())
	assert.InDelta(t, 15.0, cfg.DomainPriceLimit, 0.001)
	assert.Equal(t, []string{"U01", "U02", "U03"}, cfg.Roster())
}

func TestRosterEmpty(t *testing.T) {
	cfg := &Config{SlackTeamRoster: ""}
	assert.Empty(t, cfg.Roster())
}
