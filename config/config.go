package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable read by Load, e.g.
// ADMISSIONS_DB_HOST or ADMISSIONS_LOGGING_LEVEL.
const EnvPrefix = "ADMISSIONS"

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Database DatabaseConfig `yaml:"database" envconfig:"DB"`
	Render   RenderConfig   `yaml:"render" envconfig:"RENDER"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" validate:"oneof=text json"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// DatabaseConfig selects where finished runs are stored. DSN wins over the
// individual connection fields.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"oneof=postgres sqlite"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true"`
}

// RenderConfig contains the external tools and worker pool used to build
// report artifacts
type RenderConfig struct {
	Workers int      `yaml:"workers" validate:"min=1,max=256"`
	Gnuplot string   `yaml:"gnuplot" validate:"required"`
	Xelatex string   `yaml:"xelatex" validate:"required"`
	Tabula  []string `yaml:"tabula"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Host:    "localhost",
			Port:    5432,
			Name:    "admissions",
			SSLMode: "disable",
		},
		Render: RenderConfig{
			Workers: runtime.NumCPU(),
			Gnuplot: "gnuplot",
			Xelatex: "xelatex",
		},
	}
}

// ConnString builds the driver specific data source name.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "sqlite" {
		return fmt.Sprintf("file:%s.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", d.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Load layers the configuration: defaults, then the optional YAML file at
// path, then .env and ADMISSIONS_* environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// No field carries a default tag, so unset variables leave the values
	// above untouched.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints declared on the configuration structs.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
