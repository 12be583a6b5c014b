package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the agent system
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Session   SessionConfig   `mapstructure:"session"`
	Extract   ExtractConfig   `mapstructure:"extract"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address       string `mapstructure:"address"`
	MaxUploadMB   int64  `mapstructure:"max_upload_mb"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type       string              `mapstructure:"type"` // openai, groq
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Models     map[string]LLMModel `mapstructure:"models"`
	MaxRetries int                 `mapstructure:"max_retries"`
	Timeout    time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name            string  `mapstructure:"name"`
	APIName         string  `mapstructure:"api_name"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
	CostPer1K       float64 `mapstructure:"cost_per_1k_input"`
	CostPer1KOutput float64 `mapstructure:"cost_per_1k_output"`
}

// LLMRoutingConfig defines which model to use for different stages
type LLMRoutingConfig struct {
	Planning      string `mapstructure:"planning"`      // intent/plan decisions
	Execution     string `mapstructure:"execution"`     // task handlers
	Transcription string `mapstructure:"transcription"` // whisper-compatible audio model
	Fallback      string `mapstructure:"fallback"`
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	CostTracking bool `mapstructure:"cost_tracking"`
	PeriodicLogs bool `mapstructure:"periodic_logs"`
}

// SessionConfig controls the clarification session store backend
type SessionConfig struct {
	Backend string        `mapstructure:"backend"` // inmemory, redis
	TTL     time.Duration `mapstructure:"ttl"`     // 0 disables expiry
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ExtractConfig contains content extractor collaborator settings
type ExtractConfig struct {
	OCREndpoint    string        `mapstructure:"ocr_endpoint"`    // external OCR HTTP service
	CaptionTimeout time.Duration `mapstructure:"caption_timeout"` // youtube caption fetch
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
}

func (s SessionConfig) Validate() error {
	switch s.Backend {
	case "", "inmemory":
		return nil
	case "redis":
		if s.Redis.Host == "" {
			return fmt.Errorf("session.redis.host required when session.backend is redis")
		}
		return nil
	default:
		return fmt.Errorf("unsupported session backend: %s", s.Backend)
	}
}

func (l LLMConfig) Validate() error {
	if len(l.Providers) == 0 {
		return fmt.Errorf("at least one llm provider must be configured")
	}
	if l.Routing.Planning == "" && l.Routing.Fallback == "" {
		return fmt.Errorf("llm.routing.planning or llm.routing.fallback must be set")
	}
	return nil
}

// LoadConfig reads the config file (JSON) and environment overrides.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("server.max_upload_mb", 50)
	viper.SetDefault("server.allowed_origin", "*")
	viper.SetDefault("general.default_timeout", "60s")
	viper.SetDefault("session.backend", "inmemory")
	viper.SetDefault("extract.caption_timeout", "15s")
	viper.SetDefault("extract.max_retries", 1)
	viper.SetDefault("extract.retry_backoff", "1s")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("INTAKE")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.LLM.Validate(); err != nil {
		panic(err)
	}
	if err := config.Session.Validate(); err != nil {
		panic(err)
	}

	return &config
}
