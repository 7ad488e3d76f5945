package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/membermatters/memberportal/internal/types"
	"github.com/membermatters/memberportal/internal/validator"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Postgres   PostgresConfig   `mapstructure:"postgres" validate:"required"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Email      EmailConfig      `mapstructure:"email"`
	Billing    BillingConfig    `mapstructure:"billing"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" default:":8080" validate:"required"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" default:"info"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host" validate:"required"`
	Port                   int    `mapstructure:"port" validate:"required"`
	User                   string `mapstructure:"user" validate:"required"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname" validate:"required"`
	SSLMode                string `mapstructure:"sslmode" default:"disable"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"60"`
}

type StripeConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type EmailConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	APIKey          string `mapstructure:"api_key"`
	FromAddress     string `mapstructure:"from_address"`
	FromName        string `mapstructure:"from_name"`
	OperatorAddress string `mapstructure:"operator_address"`
	PortalBaseURL   string `mapstructure:"portal_base_url"`
}

type BillingConfig struct {
	DefaultCurrency string `mapstructure:"default_currency" default:"aud"`
}

// NewConfig loads configuration from config files and environment variables
func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MEMBERPORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Printf("no config file found, using defaults and environment variables")
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "memberportal")
	v.SetDefault("postgres.dbname", "memberportal")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("billing.default_currency", "aud")
}

func (c Configuration) Validate() error {
	if err := validator.ValidateRequest(c); err != nil {
		return err
	}
	if c.Stripe.Enabled && c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe.secret_key is required when stripe is enabled")
	}
	if c.Email.Enabled && c.Email.APIKey == "" {
		return fmt.Errorf("email.api_key is required when email is enabled")
	}
	return nil
}

// GetDSN builds the postgres connection string.
func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetDefaultConfig returns a config suitable for tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: "debug"},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "memberportal",
			DBName:  "memberportal_test",
			SSLMode: "disable",
		},
		Billing: BillingConfig{DefaultCurrency: "aud"},
	}
}
