package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string                  `mapstructure:"ENV"` // development, production
	Port            int                     `mapstructure:"PORT"`
	DBType          string                  `mapstructure:"DB_TYPE"` // sqlite, postgres, mysql
	DSN             string                  `mapstructure:"DSN"`
	SkipAutoMigrate bool                    `mapstructure:"SKIP_AUTO_MIGRATE"`
	LogLevel        string                  `mapstructure:"LOG_LEVEL"`
	AppURL          string                  `mapstructure:"APP_URL"`
	SessionCodec    string                  `mapstructure:"SESSION_CODEC"` // base64, jwt
	SessionSecret   string                  `mapstructure:"SESSION_SECRET"`
	SessionMaxAge   time.Duration           `mapstructure:"SESSION_MAX_AGE"`
	MagicLinkTTL    time.Duration           `mapstructure:"MAGIC_LINK_TTL"`
	RateLimit       int                     `mapstructure:"RATE_LIMIT"`
	RateWindow      time.Duration           `mapstructure:"RATE_WINDOW"`
	RedisAddr       string                  `mapstructure:"REDIS_ADDR"`
	OIDCProviders   map[string]OIDCProvider `mapstructure:"OIDC_PROVIDERS"`
}

type OIDCProvider struct {
	Issuer       string `mapstructure:"issuer"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// Production reports whether the secure cookie flag should be set.
func (c *Config) Production() bool {
	return c.Env == "production"
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("ENV", "development")
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("DB_TYPE", "sqlite")
	viper.SetDefault("DSN", "journal.db")
	viper.SetDefault("SKIP_AUTO_MIGRATE", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_URL", "http://localhost:8080")
	viper.SetDefault("SESSION_CODEC", "base64")
	viper.SetDefault("SESSION_MAX_AGE", 365*24*time.Hour)
	viper.SetDefault("MAGIC_LINK_TTL", 24*time.Hour)
	viper.SetDefault("RATE_LIMIT", 5)
	viper.SetDefault("RATE_WINDOW", 15*time.Minute)
	// Env-only keys need a default so AutomaticEnv materializes them.
	viper.SetDefault("SESSION_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// OIDC_PROVIDERS is a map and cannot be expressed as a single env
	// value, so it comes from an optional config file.
	if path := viper.GetString("CONFIG_FILE"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		viper.SetConfigName("journal")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
