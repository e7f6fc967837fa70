// Package config loads application configuration with viper, layering
// defaults, a config file, and environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Source configuration (where snapshot inputs come from)
	Source SourceConfig `mapstructure:"source"`

	// NLP configuration
	NLP NLPConfig `mapstructure:"nlp"`

	// Partition configuration
	Partition PartitionConfig `mapstructure:"partition"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Checkpoint configuration
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// SourceConfig holds configuration for snapshot input sources
type SourceConfig struct {
	// Driver selects the loader: file or neo4j
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"` // dataset file for the file loader
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// NLPConfig holds LLM client configuration
type NLPConfig struct {
	Provider    string  `mapstructure:"provider"` // openai or openai-compatible
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// PartitionConfig holds partitioning engine configuration
type PartitionConfig struct {
	// Engine selects the backend: label_propagation or leiden
	Engine string `mapstructure:"engine"`
	// LeidenCommand is the argv of the leiden subprocess script
	LeidenCommand []string `mapstructure:"leiden_command"`
	Resolution    float64  `mapstructure:"resolution"`
	Iterations    int      `mapstructure:"iterations"`
	Seed          int64    `mapstructure:"seed"`
	MinSize       int      `mapstructure:"min_size"`
	MaxLevels     int      `mapstructure:"max_levels"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CheckpointConfig holds detection-run checkpoint configuration
type CheckpointConfig struct {
	Dir string `mapstructure:"dir"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("source.driver", "file")
	viper.SetDefault("source.database", "neo4j")

	viper.SetDefault("nlp.provider", "openai")
	viper.SetDefault("nlp.temperature", 0.2)
	viper.SetDefault("nlp.max_tokens", 1024)

	viper.SetDefault("partition.engine", "label_propagation")
	viper.SetDefault("partition.resolution", 1.0)
	viper.SetDefault("partition.iterations", -1)
	viper.SetDefault("partition.seed", 1)
	viper.SetDefault("partition.min_size", 1)
	viper.SetDefault("partition.max_levels", 10)

	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.graphling/telemetry", home))
		viper.SetDefault("checkpoint.dir", fmt.Sprintf("%s/.graphling/checkpoints", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.NLP.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.NLP.BaseURL = baseURL
	}

	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Source.URI = uri
		config.Source.Driver = "neo4j"
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Source.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Source.Password = pass
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
	if dir := os.Getenv("CHECKPOINT_DIR"); dir != "" {
		config.Checkpoint.Dir = dir
	}
}
