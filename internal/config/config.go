package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"timebill.db"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
	} `yaml:"log"`

	Server struct {
		Port         int `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
		ReadTimeout  int `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15"`
		WriteTimeout int `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15"`
	} `yaml:"server"`

	Billing struct {
		VATPercentage       float64 `yaml:"vat_percentage" env:"VAT_PERCENTAGE" env-default:"25"`
		DefaultPaymentTerms int     `yaml:"default_payment_terms" env:"DEFAULT_PAYMENT_TERMS" env-default:"14"`
		DefaultCurrency     string  `yaml:"default_currency" env:"DEFAULT_CURRENCY" env-default:"USD"`
	} `yaml:"billing"`

	Mail struct {
		BaseURL string `yaml:"base_url" env:"MAIL_BASE_URL" env-default:""`
		APIKey  string `yaml:"api_key" env:"MAIL_API_KEY" env-default:""`
		Timeout int    `yaml:"timeout" env:"MAIL_TIMEOUT" env-default:"10"`
	} `yaml:"mail"`
}

// LoadConfig reads the yaml config file and applies environment overrides.
// A missing file is not an error; env vars and defaults apply alone.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return &cfg, nil
}
