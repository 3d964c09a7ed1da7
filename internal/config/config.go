package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gymledger/gymledger/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	DynamoDB   DynamoDBConfig   `validate:"required"`
	Ledger     LedgerConfig     `validate:"required"`
	Scheduler  SchedulerConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type DynamoDBConfig struct {
	Region      string `validate:"required"`
	Endpoint    string // local development override, empty in production
	TablePrefix string
}

// LedgerConfig fixes the single currency and the civil timezone used for all
// "today" comparisons.
type LedgerConfig struct {
	Currency string `validate:"required"`
	Timezone string `validate:"required"`
}

// SchedulerConfig bounds the batch scans triggered by the external scheduler.
type SchedulerConfig struct {
	ScanPageSize int
	MaxTxRetries int
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/gymledger")

	v.SetEnvPrefix("GYMLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeServer))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("dynamodb.region", "us-east-1")
	v.SetDefault("dynamodb.tableprefix", "gymledger")
	v.SetDefault("ledger.currency", "usd")
	v.SetDefault("ledger.timezone", "UTC")
	v.SetDefault("scheduler.scanpagesize", 100)
	v.SetDefault("scheduler.maxtxretries", 3)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Ledger.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured civil timezone.
func (c LedgerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GetDefaultConfig returns a default configuration for local development and
// scripts.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		DynamoDB:   DynamoDBConfig{Region: "us-east-1", TablePrefix: "gymledger"},
		Ledger:     LedgerConfig{Currency: "usd", Timezone: "UTC"},
		Scheduler:  SchedulerConfig{ScanPageSize: 100, MaxTxRetries: 3},
	}
}
