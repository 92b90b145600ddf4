package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Cart     CartConfig     `yaml:"cart"`
	Pricing  PricingConfig  `yaml:"pricing"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	// URL is a pgx connection string. Empty means carts are kept in memory only.
	URL string `yaml:"url"`
}

type CartConfig struct {
	DefaultType          string `yaml:"default_type"`
	MergeOrderedQuantity bool   `yaml:"merge_ordered_quantity"`
}

type PricingConfig struct {
	Currency string `yaml:"currency"`
}

func Default() Config {
	return Config{
		Log:     LogConfig{Mode: "development"},
		Cart:    CartConfig{DefaultType: "default"},
		Pricing: PricingConfig{Currency: "EUR"},
	}
}

// Load reads the YAML file at path (skipped when path is empty) over the
// defaults and applies CART_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("yaml.Unmarshal: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("applyEnv: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := lookup("CART_LOG_MODE"); ok {
		cfg.Log.Mode = v
	}
	if v, ok := lookup("CART_DATABASE_URL"); ok {
		cfg.Database.URL = v
	}
	if v, ok := lookup("CART_DEFAULT_TYPE"); ok {
		cfg.Cart.DefaultType = v
	}
	if v, ok := lookup("CART_MERGE_ORDERED_QUANTITY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CART_MERGE_ORDERED_QUANTITY[%s] is not a bool: %w", v, err)
		}
		cfg.Cart.MergeOrderedQuantity = b
	}
	if v, ok := lookup("CART_PRICING_CURRENCY"); ok {
		cfg.Pricing.Currency = v
	}

	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)

	return v, v != ""
}

func (c Config) Validate() error {
	if c.Cart.DefaultType == "" {
		return fmt.Errorf("cart.default_type is empty")
	}

	if _, err := c.Currency(); err != nil {
		return err
	}

	return nil
}

func (c Config) Currency() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Pricing.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("pricing.currency[%s] is not valid: %w", c.Pricing.Currency, err)
	}

	return unit, nil
}
