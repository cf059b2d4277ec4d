package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Backup    BackupConfig
	Email     EmailConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds postgres settings.
type DatabaseConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// RateLimitConfig holds the per-minute budgets for the three named
// rate-limit policies.
type RateLimitConfig struct {
	AuthPerMinute   int `mapstructure:"auth_per_minute"`
	APIPerMinute    int `mapstructure:"api_per_minute"`
	StrictPerMinute int `mapstructure:"strict_per_minute"`
}

// BackupConfig holds the auto-backup job settings.
type BackupConfig struct {
	Dir      string
	Schedule string
}

// EmailConfig holds SMTP delivery settings. Delivery is disabled when the
// address is empty; queued mail is then logged instead of sent.
type EmailConfig struct {
	Address      string
	Password     string
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     string `mapstructure:"smtp_port"`
	TemplatesDir string `mapstructure:"templates_dir"`
}

// Load reads configuration from an optional config file and the environment.
// Env var overrides use prefix FINANCETRACKER_ (e.g. FINANCETRACKER_DATABASE_CONNECTION_STRING).
func Load() (Config, error) {
	// .env first so the env overrides below see it.
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.connection_string", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("ratelimit.auth_per_minute", 10)
	v.SetDefault("ratelimit.api_per_minute", 120)
	v.SetDefault("ratelimit.strict_per_minute", 5)
	v.SetDefault("backup.dir", "backups")
	v.SetDefault("backup.schedule", "@daily")
	v.SetDefault("email.address", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.smtp_host", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", "587")
	v.SetDefault("email.templates_dir", "templates")

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FINANCETRACKER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.Database.ConnectionString == "" {
		return Config{}, fmt.Errorf("missing database connection string")
	}
	if c.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("no JWT secret provided")
	}
	return c, nil
}
