package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unklstewy/b200-landing/pkg/landing"
)

// Config represents the complete application configuration.
// Configuration can be loaded from a JSON or YAML file.
type Config struct {
	Tables    TablesConfig    `json:"tables" yaml:"tables"`
	Inputs    InputsConfig    `json:"inputs" yaml:"inputs"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Auth      AuthConfig      `json:"auth" yaml:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// TablesConfig locates the four reference tables.
type TablesConfig struct {
	// Dir is the directory holding the CSV files.
	// Empty selects the illustrative sample dataset embedded in the binary.
	Dir string `json:"dir" yaml:"dir"`

	// PressureOATFile is the pressure altitude x OAT table
	PressureOATFile string `json:"pressure_oat_file" yaml:"pressure_oat_file"`

	// WeightFile is the weight adjustment table
	WeightFile string `json:"weight_file" yaml:"weight_file"`

	// WindFile is the wind component table
	WindFile string `json:"wind_file" yaml:"wind_file"`

	// ObstacleFile is the obstacle correction table
	ObstacleFile string `json:"obstacle_file" yaml:"obstacle_file"`

	// HeaderSkipRows is the number of title rows above the pressure
	// altitude x OAT header row
	HeaderSkipRows int `json:"header_skip_rows" yaml:"header_skip_rows"`

	// MaxWeightLb is the weight column used to locate rows (default: 12500)
	MaxWeightLb float64 `json:"max_weight_lb" yaml:"max_weight_lb"`

	// ObstacleHeightFt is the obstacle column read by the last stage (default: 50)
	ObstacleHeightFt float64 `json:"obstacle_height_ft" yaml:"obstacle_height_ft"`

	// CacheSize is the number of distinct table sets kept in memory
	CacheSize int `json:"cache_size" yaml:"cache_size"`
}

// InputsConfig holds the initial slider values and the allowed ranges.
type InputsConfig struct {
	Defaults landing.Input  `json:"defaults" yaml:"defaults"`
	Limits   landing.Limits `json:"limits" yaml:"limits"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port" yaml:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host" yaml:"host"`

	// AllowedOrigins is the CORS origin list
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	// Enabled turns calculation history and user accounts on
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Host is the database server hostname
	Host string `json:"host" yaml:"host"`

	// Port is the database server port
	Port int `json:"port" yaml:"port"`

	// Database is the database name
	Database string `json:"database" yaml:"database"`

	// Username for database authentication
	Username string `json:"username" yaml:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password" yaml:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode" yaml:"ssl_mode"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `json:"max_open_conns" yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int `json:"max_idle_conns" yaml:"max_idle_conns"`

	// HistoryRetentionDays prunes stored calculations older than this (0 = keep all)
	HistoryRetentionDays int `json:"history_retention_days" yaml:"history_retention_days"`
}

// AuthConfig contains API authentication settings.
type AuthConfig struct {
	// JWTSecret signs API tokens (override with B200_JWT_SECRET)
	JWTSecret string `json:"jwt_secret" yaml:"jwt_secret"`

	// TokenHours is how long issued tokens stay valid
	TokenHours int `json:"token_hours" yaml:"token_hours"`

	// AdminUsername and AdminPasswordHash define the built-in account used
	// when the database is disabled
	AdminUsername     string `json:"admin_username" yaml:"admin_username"`
	AdminPasswordHash string `json:"admin_password_hash" yaml:"admin_password_hash"`
}

// RateLimitConfig limits calculation requests per client.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client (0 = unlimited)
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// Burst is the number of requests allowed at once
	Burst int `json:"burst" yaml:"burst"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// File is an optional log file, rotated by size. Empty logs to stderr only.
	File string `json:"file" yaml:"file"`

	MaxSizeMB  int  `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int  `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int  `json:"max_age_days" yaml:"max_age_days"`
	Compress   bool `json:"compress" yaml:"compress"`
}

// Load reads configuration from a JSON or YAML file (chosen by extension).
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unset fields keep their defaults
	cfg := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to a JSON or YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Tables: TablesConfig{
			Dir:              "",
			PressureOATFile:  "pressureheight_oat.csv",
			WeightFile:       "weightadjustment.csv",
			WindFile:         "windcomponent.csv",
			ObstacleFile:     "obstacle.csv",
			HeaderSkipRows:   1,
			MaxWeightLb:      landing.MaxWeightLb,
			ObstacleHeightFt: landing.ObstacleHeightFt,
			CacheSize:        8,
		},
		Inputs: InputsConfig{
			Defaults: landing.DefaultInput(),
			Limits:   landing.DefaultLimits(),
		},
		Server: ServerConfig{
			Port:           "8080",
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "b200landing",
			Username:     "b200landing",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,

			HistoryRetentionDays: 90,
		},
		Auth: AuthConfig{
			JWTSecret:     "dev-secret-change-in-production",
			TokenHours:    24,
			AdminUsername: "admin",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Logging: LoggingConfig{
			MaxSizeMB:  32,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// Validate checks the input envelope and table settings for consistency.
func (c *Config) Validate() error {
	ranges := map[string]landing.Range{
		"pressure_altitude": c.Inputs.Limits.PressureAltitude,
		"oat":               c.Inputs.Limits.OAT,
		"weight":            c.Inputs.Limits.Weight,
		"wind":              c.Inputs.Limits.Wind,
	}
	for name, r := range ranges {
		if r.Min > r.Max {
			return fmt.Errorf("inputs.limits.%s: min %v greater than max %v", name, r.Min, r.Max)
		}
		if r.Step <= 0 {
			return fmt.Errorf("inputs.limits.%s: step must be positive", name)
		}
	}
	if err := c.Inputs.Defaults.Validate(c.Inputs.Limits); err != nil {
		return fmt.Errorf("inputs.defaults: %w", err)
	}
	if c.Tables.HeaderSkipRows < 0 {
		return fmt.Errorf("tables.header_skip_rows must not be negative")
	}
	if c.Tables.CacheSize <= 0 {
		return fmt.Errorf("tables.cache_size must be positive")
	}
	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This allows secrets like passwords to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if dir := os.Getenv("B200_TABLES_DIR"); dir != "" {
		c.Tables.Dir = dir
	}
	if port := os.Getenv("B200_PORT"); port != "" {
		c.Server.Port = port
	}
	if dbPassword := os.Getenv("B200_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if secret := os.Getenv("B200_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if logFile := os.Getenv("B200_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
