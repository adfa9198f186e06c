package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	DocuSign  DocuSignConfig  `mapstructure:"docusign"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// DocuSignConfig holds DocuSign API credentials and webhook settings
type DocuSignConfig struct {
	IntegrationKey string        `mapstructure:"integration_key"`
	UserID         string        `mapstructure:"user_id"`
	RSAKey         string        `mapstructure:"rsa_key"` // PEM content or a path to a PEM file
	Demo           bool          `mapstructure:"demo"`
	WebhookHMACKey string        `mapstructure:"webhook_hmac_key"`
	APITimeout     time.Duration `mapstructure:"api_timeout"`
}

// SyncConfig holds envelope sync behaviour
type SyncConfig struct {
	DefaultDaysBack int `mapstructure:"default_days_back"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)

	viper.SetDefault("docusign.demo", true)
	viper.SetDefault("docusign.api_timeout", "60s")

	viper.SetDefault("sync.default_days_back", 30)

	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.interval_minutes", 15)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")

	// DocuSign
	viper.BindEnv("docusign.integration_key", "INTEGRATION_KEY")
	viper.BindEnv("docusign.user_id", "USER_ID")
	viper.BindEnv("docusign.rsa_key", "RSA_KEY")
	viper.BindEnv("docusign.demo", "DOCUSIGN_DEMO")
	viper.BindEnv("docusign.webhook_hmac_key", "DOCUSIGN_WEBHOOK_HMAC_KEY")
	viper.BindEnv("docusign.api_timeout", "DOCUSIGN_API_TIMEOUT")

	// Sync
	viper.BindEnv("sync.default_days_back", "SYNC_DEFAULT_DAYS_BACK")

	// Scheduler
	viper.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	viper.BindEnv("scheduler.interval_minutes", "SCHEDULER_INTERVAL_MINUTES")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if c.DocuSign.IntegrationKey == "" || c.DocuSign.UserID == "" || c.DocuSign.RSAKey == "" {
		return fmt.Errorf("DocuSign integration key, user id, and RSA key are required")
	}

	if c.Sync.DefaultDaysBack <= 0 {
		return fmt.Errorf("sync default days back must be greater than 0")
	}

	if c.Scheduler.Enabled && c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	return nil
}
