// Package config loads all runtime configuration from environment variables
// (with a .env fallback for local development) so main stays lean.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	pstrings "onboardly/pkg/platform/strings"
)

// Config captures everything the relay needs at startup. All values are
// immutable for the process lifetime.
type Config struct {
	Addr            string        `mapstructure:"ADDR"`
	AllowedOrigin   string        `mapstructure:"ALLOWED_ORIGIN"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	RegistrarBaseURL   string        `mapstructure:"REGISTRAR_BASE_URL"`
	RegistrarAPIKey    string        `mapstructure:"REGISTRAR_API_KEY"`
	RegistrarAPISecret string        `mapstructure:"REGISTRAR_API_SECRET"`
	RegistrarTimeout   time.Duration `mapstructure:"REGISTRAR_TIMEOUT"`
	IPEchoURL          string        `mapstructure:"IP_ECHO_URL"`

	// DomainPriceLimit enables price gating when > 0: domains priced above
	// the limit are reported as unavailable with reason "price".
	DomainPriceLimit float64 `mapstructure:"DOMAIN_PRICE_LIMIT"`

	SlackBotToken      string `mapstructure:"SLACK_BOT_TOKEN"`
	SlackTeamRoster    string `mapstructure:"SLACK_TEAM_ROSTER"`
	SlackHelpChannelID string `mapstructure:"SLACK_HELP_CHANNEL_ID"`

	// RedisAddr switches the availability cache to redis when set; empty
	// keeps the in-process cache.
	RedisAddr string        `mapstructure:"REDIS_ADDR"`
	CacheTTL  time.Duration `mapstructure:"CACHE_TTL"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ALLOWED_ORIGIN", "*")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("REGISTRAR_TIMEOUT", 10*time.Second)
	v.SetDefault("IP_ECHO_URL", "https://api.ipify.org?format=json")
	v.SetDefault("DOMAIN_PRICE_LIMIT", 0.0)
	v.SetDefault("CACHE_TTL", 5*time.Minute)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Fallback for local development; missing .env is fine.
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	// AutomaticEnv alone doesn't surface env vars to Unmarshal; bind each
	// key explicitly.
	for _, key := range []string{
		"ADDR", "ALLOWED_ORIGIN", "SHUTDOWN_TIMEOUT",
		"REGISTRAR_BASE_URL", "REGISTRAR_API_KEY", "REGISTRAR_API_SECRET",
		"REGISTRAR_TIMEOUT", "IP_ECHO_URL", "DOMAIN_PRICE_LIMIT",
		"SLACK_BOT_TOKEN", "SLACK_TEAM_ROSTER", "SLACK_HELP_CHANNEL_ID",
		"REDIS_ADDR", "CACHE_TTL",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Roster returns the fixed team roster as member IDs, deduplicated so a
// sloppy comma list can't invite anyone twice.
func (c *Config) Roster() []string {
	ids := pstrings.DedupeAndTrim(strings.Split(c.SlackTeamRoster, ","))
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// PriceGatingEnabled reports whether the optional price ceiling applies.
func (c *Config) PriceGatingEnabled() bool {
	return c.DomainPriceLimit > 0
}
