package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config mirrors config/config.yaml. Sensitive values (the DSN) may be
// overridden from the environment / .env and are never committed.
type Config struct {
	Server   ServerConfig            `mapstructure:"server"`
	Postgres PostgresConfig          `mapstructure:"postgres"`
	Sources  map[string]SourceConfig `mapstructure:"sources"`
	Matching MatchingConfig          `mapstructure:"matching"`
}

// ServerConfig configures the read-only HTTP view surface.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release/test
}

// PostgresConfig configures the catalog store connection.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SourceConfig describes one catalog source. ProductURLBase is used to
// recompose canonical listing URLs from catalog/item/vendor ids.
type SourceConfig struct {
	DisplayName    string `mapstructure:"display_name"`
	ProductURLBase string `mapstructure:"product_url_base"`
}

// MatchingConfig carries the matching policy knobs. The defaults are
// empirically chosen; changing any of them is a policy change that needs
// its own test coverage.
type MatchingConfig struct {
	NameScoreThreshold float64 `mapstructure:"name_score_threshold"`
	NameScoreMargin    float64 `mapstructure:"name_score_margin"`
	BrandMinCount      int     `mapstructure:"brand_min_count"`
	BrandMinShare      float64 `mapstructure:"brand_min_share"`
	// BrandSamplesPath points at the aggregated manufacturer/brand CSV the
	// brand dictionary is built from. Empty disables the dictionary.
	BrandSamplesPath string `mapstructure:"brand_samples_path"`
}

// Matching policy defaults, applied when the config file leaves them unset.
const (
	DefaultNameScoreThreshold = 0.45
	DefaultNameScoreMargin    = 0.15
	DefaultBrandMinCount      = 2
	DefaultBrandMinShare      = 0.8
)

// LoadConfig reads config/config.yaml, then overrides sensitive fields from
// the environment (.env is loaded first if present; precedence env > yaml).
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	cfg.Matching.applyDefaults()
	return &cfg, nil
}

func (m *MatchingConfig) applyDefaults() {
	if m.NameScoreThreshold <= 0 {
		m.NameScoreThreshold = DefaultNameScoreThreshold
	}
	if m.NameScoreMargin <= 0 {
		m.NameScoreMargin = DefaultNameScoreMargin
	}
	if m.BrandMinCount <= 0 {
		m.BrandMinCount = DefaultBrandMinCount
	}
	if m.BrandMinShare <= 0 {
		m.BrandMinShare = DefaultBrandMinShare
	}
}
