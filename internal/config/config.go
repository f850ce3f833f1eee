package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port            int           `yaml:"port" env:"PORT" validate:"gt=0,lt=65536"`
		AllowedOrigin   string        `yaml:"allowed_origin" env:"CORS_ALLOWED_ORIGIN" validate:"required"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	} `yaml:"server"`
	Provider struct {
		Name          string        `yaml:"name" env:"PROVIDER" validate:"oneof=nasdaq tiingo"`
		NasdaqBaseURL string        `yaml:"nasdaq_base_url" env:"NASDAQ_BASE_URL" validate:"omitempty,url"`
		TiingoBaseURL string        `yaml:"tiingo_base_url" env:"TIINGO_BASE_URL" validate:"omitempty,url"`
		TiingoToken   string        `yaml:"tiingo_token" env:"TIINGO_API_TOKEN"`
		Timeout       time.Duration `yaml:"timeout" env:"PROVIDER_TIMEOUT" validate:"gt=0"`
		RowLimit      int           `yaml:"row_limit" env:"PROVIDER_ROW_LIMIT" validate:"gt=0"`
	} `yaml:"provider"`
	Cache struct {
		Enabled     bool   `yaml:"enabled" env:"CACHE_ENABLED"`
		RefreshCron string `yaml:"refresh_cron" env:"CACHE_REFRESH_CRON"`
	} `yaml:"cache"`
	Chart struct {
		Theme            string `yaml:"theme" env:"THEME_MODE" validate:"oneof=light dark"`
		MaxColorAttempts int    `yaml:"max_color_attempts" env:"MAX_COLOR_ATTEMPTS" validate:"gt=0"`
	} `yaml:"chart"`
	Auth struct {
		VerifyURL string `yaml:"verify_url" env:"AUTH_VERIFY_URL" validate:"omitempty,url"`
	} `yaml:"auth"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	} `yaml:"database"`
	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json console"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy" env:"HTTPS_PROXY" validate:"omitempty,url"`
}

// Default returns the configuration used for keys absent from both file and environment.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.AllowedOrigin = "*"
	cfg.Server.ShutdownTimeout = 15 * time.Second
	cfg.Provider.Name = "nasdaq"
	cfg.Provider.Timeout = 20 * time.Second
	cfg.Provider.RowLimit = 400
	cfg.Cache.Enabled = true
	cfg.Chart.Theme = "light"
	cfg.Chart.MaxColorAttempts = 2000
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	return cfg
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Provider.Name == "tiingo" && c.Provider.TiingoToken == "" {
		return fmt.Errorf("provider.tiingo_token is required for the tiingo provider")
	}
	if c.Cache.RefreshCron != "" && !c.Cache.Enabled {
		return fmt.Errorf("cache.refresh_cron requires cache.enabled")
	}
	return nil
}

// AuthEnabled reports whether requests must carry a verified bearer token.
func (c *Config) AuthEnabled() bool {
	return c.Auth.VerifyURL != ""
}
