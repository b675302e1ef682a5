package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	HTTP     HTTPConfig
	Auth     AuthConfig
	Orders   OrdersConfig
	Invoices InvoicesConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address string // listen address (e.g., ":8080")
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string // JWT signing secret
}

// OrdersConfig contains order-creation policy settings.
type OrdersConfig struct {
	ShippingFee string // flat shipping fee applied at checkout, decimal string
}

// InvoicesConfig contains invoice generation settings.
type InvoicesConfig struct {
	PDFDir string // directory where rendered invoice documents are stored
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("db_path", "delivery.db")
	v.SetDefault("http_address", ":8080")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("shipping_fee", "10")
	v.SetDefault("invoice_pdf_dir", "invoices")
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Database: DatabaseConfig{Path: v.GetString("db_path")},
		HTTP:     HTTPConfig{Address: v.GetString("http_address")},
		Auth:     AuthConfig{JWTSecret: v.GetString("jwt_secret")},
		Orders:   OrdersConfig{ShippingFee: v.GetString("shipping_fee")},
		Invoices: InvoicesConfig{PDFDir: v.GetString("invoice_pdf_dir")},
	}
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := fromViper(newViper())
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in
// development. WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	v := newViper()
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	return fromViper(v), nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, Auth: *** (masked) ***}", c.Database.Path, c.HTTP.Address)
}
