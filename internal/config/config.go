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
	Mailbox   MailboxConfig   `mapstructure:"mailbox"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
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

// MailboxConfig holds mail provider configuration
type MailboxConfig struct {
	TenantID     string `mapstructure:"tenant_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	UserEmail    string `mapstructure:"user_email"`
	UseIMAP      bool   `mapstructure:"use_imap"`
	IMAPHost     string `mapstructure:"imap_host"`
	IMAPPort     int    `mapstructure:"imap_port"`
	IMAPUser     string `mapstructure:"imap_user"`
	IMAPPassword string `mapstructure:"imap_password"`
}

// OracleConfig holds text-completion oracle configuration
type OracleConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	IntervalMinutes   int `mapstructure:"interval_minutes"`
	RetrySweepMinutes int `mapstructure:"retry_sweep_minutes"`
}

// PipelineConfig holds the triage pipeline settings, loaded once per
// process instead of being read ad hoc from a settings table.
type PipelineConfig struct {
	ProcessingEnabled    bool `mapstructure:"processing_enabled"`
	AutoResponseEnabled  bool `mapstructure:"auto_response_enabled"`
	InstantMode          bool `mapstructure:"instant_mode"`
	ResponseDelaySeconds int  `mapstructure:"response_delay_seconds"`
	SendOnNoMatch        bool `mapstructure:"send_on_no_match"`
	MaxRetryAttempts     int  `mapstructure:"max_retry_attempts"`
	RetryDelayMinutes    int  `mapstructure:"retry_delay_minutes"`
	BatchSize            int  `mapstructure:"batch_size"`
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

	viper.SetDefault("mailbox.use_imap", false)
	viper.SetDefault("mailbox.imap_host", "imap.gmail.com")
	viper.SetDefault("mailbox.imap_port", 993)

	viper.SetDefault("oracle.endpoint", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("oracle.model", "gpt-4o-mini")
	viper.SetDefault("oracle.timeout", "60s")

	viper.SetDefault("scheduler.interval_minutes", 5)
	viper.SetDefault("scheduler.retry_sweep_minutes", 15)

	viper.SetDefault("pipeline.processing_enabled", true)
	viper.SetDefault("pipeline.auto_response_enabled", true)
	viper.SetDefault("pipeline.instant_mode", true)
	viper.SetDefault("pipeline.response_delay_seconds", 0)
	viper.SetDefault("pipeline.send_on_no_match", true)
	viper.SetDefault("pipeline.max_retry_attempts", 3)
	viper.SetDefault("pipeline.retry_delay_minutes", 30)
	viper.SetDefault("pipeline.batch_size", 50)
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

	// Mailbox
	viper.BindEnv("mailbox.tenant_id", "MAILBOX_TENANT_ID")
	viper.BindEnv("mailbox.client_id", "MAILBOX_CLIENT_ID")
	viper.BindEnv("mailbox.client_secret", "MAILBOX_CLIENT_SECRET")
	viper.BindEnv("mailbox.refresh_token", "MAILBOX_REFRESH_TOKEN")
	viper.BindEnv("mailbox.user_email", "MAILBOX_USER_EMAIL")
	viper.BindEnv("mailbox.use_imap", "MAILBOX_USE_IMAP")
	viper.BindEnv("mailbox.imap_host", "MAILBOX_IMAP_HOST")
	viper.BindEnv("mailbox.imap_port", "MAILBOX_IMAP_PORT")
	viper.BindEnv("mailbox.imap_user", "MAILBOX_IMAP_USER")
	viper.BindEnv("mailbox.imap_password", "MAILBOX_IMAP_PASSWORD")

	// Oracle
	viper.BindEnv("oracle.endpoint", "ORACLE_ENDPOINT")
	viper.BindEnv("oracle.api_key", "ORACLE_API_KEY")
	viper.BindEnv("oracle.model", "ORACLE_MODEL")
	viper.BindEnv("oracle.timeout", "ORACLE_TIMEOUT")

	// Scheduler
	viper.BindEnv("scheduler.interval_minutes", "SCHEDULER_INTERVAL_MINUTES")
	viper.BindEnv("scheduler.retry_sweep_minutes", "SCHEDULER_RETRY_SWEEP_MINUTES")

	// Pipeline
	viper.BindEnv("pipeline.processing_enabled", "PIPELINE_PROCESSING_ENABLED")
	viper.BindEnv("pipeline.auto_response_enabled", "PIPELINE_AUTO_RESPONSE_ENABLED")
	viper.BindEnv("pipeline.instant_mode", "PIPELINE_INSTANT_MODE")
	viper.BindEnv("pipeline.response_delay_seconds", "PIPELINE_RESPONSE_DELAY_SECONDS")
	viper.BindEnv("pipeline.send_on_no_match", "PIPELINE_SEND_ON_NO_MATCH")
	viper.BindEnv("pipeline.max_retry_attempts", "PIPELINE_MAX_RETRY_ATTEMPTS")
	viper.BindEnv("pipeline.retry_delay_minutes", "PIPELINE_RETRY_DELAY_MINUTES")
	viper.BindEnv("pipeline.batch_size", "PIPELINE_BATCH_SIZE")
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

	if !c.Mailbox.UseIMAP {
		if c.Mailbox.ClientID == "" || c.Mailbox.ClientSecret == "" || c.Mailbox.RefreshToken == "" {
			return fmt.Errorf("mailbox OAuth2 credentials are required when not using IMAP")
		}
	} else {
		if c.Mailbox.IMAPUser == "" || c.Mailbox.IMAPPassword == "" {
			return fmt.Errorf("IMAP credentials are required when using IMAP")
		}
	}

	if c.Oracle.APIKey == "" {
		return fmt.Errorf("oracle API key is required")
	}

	if c.Scheduler.IntervalMinutes <= 0 {
		return fmt.Errorf("scheduler interval must be greater than 0")
	}

	if c.Pipeline.BatchSize <= 0 {
		return fmt.Errorf("pipeline batch size must be greater than 0")
	}
	if !c.Pipeline.InstantMode && c.Pipeline.ResponseDelaySeconds < 0 {
		return fmt.Errorf("response delay must not be negative")
	}

	return nil
}
