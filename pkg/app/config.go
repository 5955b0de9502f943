package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"storefront/pkg/checkout"
)

// Config is the storefront's YAML configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	TLS      TLSConfig      `yaml:"tls"`
	Storage  StorageConfig  `yaml:"storage"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TLSConfig turns on HTTPS for Domain with a self-signed certificate. Plain
// HTTP on RedirectPort is redirected to HTTPS; zero disables the redirect.
type TLSConfig struct {
	Domain       string `yaml:"domain"`
	RedirectPort int    `yaml:"redirect_port"`
}

// StorageConfig points at the SQLite database. An empty path uses the working directory.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// CatalogConfig names the YAML file used to seed an empty catalog.
// Without one the built-in sample products are used.
type CatalogConfig struct {
	SeedFile string `yaml:"seed_file"`
}

// CheckoutConfig holds money values as strings so they never pass through a float.
type CheckoutConfig struct {
	FreeShippingThreshold string `yaml:"free_shipping_threshold"`
	ShippingFee           string `yaml:"shipping_fee"`
	TaxRate               string `yaml:"tax_rate"`
}

// SessionConfig controls how long idle carts are kept.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LoggingConfig sets the minimum log level: debug, info, warn or error.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8765,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		TLS: TLSConfig{RedirectPort: 80},
		Checkout: CheckoutConfig{
			FreeShippingThreshold: "50.00",
			ShippingFee:           "5.99",
			TaxRate:               "0.08",
		},
		Session: SessionConfig{
			TTL:           24 * time.Hour,
			SweepInterval: time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
// The PORT environment variable wins over the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", raw, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks the settings that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Server.Port)
	}
	if c.TLS.Domain != "" && (c.TLS.RedirectPort < 0 || c.TLS.RedirectPort > 65535) {
		return fmt.Errorf("redirect port %d is out of range", c.TLS.RedirectPort)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	_, err := c.Policy()
	return err
}

// LogLevel parses the logging level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

// Policy converts the checkout section into a checkout.Policy.
func (c *Config) Policy() (checkout.Policy, error) {
	threshold, err := decimal.NewFromString(c.Checkout.FreeShippingThreshold)
	if err != nil {
		return checkout.Policy{}, fmt.Errorf("invalid free_shipping_threshold: %w", err)
	}
	fee, err := decimal.NewFromString(c.Checkout.ShippingFee)
	if err != nil {
		return checkout.Policy{}, fmt.Errorf("invalid shipping_fee: %w", err)
	}
	rate, err := decimal.NewFromString(c.Checkout.TaxRate)
	if err != nil {
		return checkout.Policy{}, fmt.Errorf("invalid tax_rate: %w", err)
	}
	policy := checkout.Policy{FreeShippingThreshold: threshold, ShippingFee: fee, TaxRate: rate}
	if err := policy.Validate(); err != nil {
		return checkout.Policy{}, err
	}
	return policy, nil
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
