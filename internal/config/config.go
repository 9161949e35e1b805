package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Config carries process-wide settings resolved at startup.
type Config struct {
	Environment string `mapstructure:"environment"`
	HTTPAddr    string `mapstructure:"http_addr"`
	DatabaseDSN string `mapstructure:"database_dsn"`

	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	CartTTL time.Duration `mapstructure:"cart_ttl"`

	RenewalSchedule  string `mapstructure:"renewal_schedule"`
	RenewalBatchSize int    `mapstructure:"renewal_batch_size"`
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load resolves configuration from CLIENTDESK_* environment variables with
// sane local-development defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("clientdesk")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("environment", "development")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("database_dsn", "file:clientdesk.db?_pragma=foreign_keys(1)")
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("cart_ttl", "24h")
	v.SetDefault("renewal_schedule", "@every 1m")
	v.SetDefault("renewal_batch_size", 25)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
