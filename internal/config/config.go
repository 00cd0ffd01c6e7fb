package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/DeWolfRobin/tf2autobot/internal/pricer"
	"github.com/DeWolfRobin/tf2autobot/internal/pricer/stream"
)

type Config struct {
	PricerURL         string        `mapstructure:"pricer_url"`
	PricerAPIToken    string        `mapstructure:"pricer_api_token"`
	PricerWSURL       string        `mapstructure:"pricer_ws_url"`
	PricerRetries     int           `mapstructure:"pricer_retries"`
	EnablePriceStream bool          `mapstructure:"enable_price_stream"`
	BotVersion        string        `mapstructure:"bot_version"`
	DatabaseURL       string        `mapstructure:"database_url"`
	SyncSchedule      string        `mapstructure:"sync_schedule"`
	NATSURL           string        `mapstructure:"nats_url"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	Port              string        `mapstructure:"port"`
	Environment       string        `mapstructure:"environment"`
	LogLevel          string        `mapstructure:"log_level"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]interface{}{
	"pricer_url":          pricer.DefaultURL,
	"pricer_api_token":    "",
	"pricer_ws_url":       stream.DefaultURL,
	"pricer_retries":      0,
	"enable_price_stream": false,
	"bot_version":         "",
	"database_url":        "tf2autobot.db",
	"sync_schedule":       "@every 30m",
	"nats_url":            "",
	"jwt_secret":          "",
	"port":                "8080",
	"environment":         "development",
	"log_level":           "info",
	"shutdown_timeout":    5 * time.Second,
}

// Load reads the configuration from the environment, falling back to an
// optional config.yaml in the working directory or ./config.
func Load() (*Config, error) {
	return load(viper.New(), ".", "./config")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// keys are looked up as their upper-case environment names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.PricerRetries < 0 {
		return nil, fmt.Errorf("pricer_retries must not be negative, got %d", cfg.PricerRetries)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
