// Package config loads and holds the application configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Conf is the global configuration loaded from the YAML file.
var Conf Config

// Config mirrors the structure of configs/config.yaml.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	Admin      AdminConfig      `mapstructure:"admin"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Assistant  AssistantConfig  `mapstructure:"assistant"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Live       LiveConfig       `mapstructure:"live"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool `mapstructure:"secure_cookies"`
}

// DatabaseConfig holds every datastore connection.
// Driver selects the relational store: "mysql" (default) or "sqlite" for single-node setups.
type DatabaseConfig struct {
	Driver string       `mapstructure:"driver"`
	MySQL  MySQLConfig  `mapstructure:"mysql"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// MySQLConfig holds the MySQL DSN.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SQLiteConfig holds the SQLite database file path.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds the token signing settings.
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// AdminConfig seeds a default administrator account on startup when Username is set.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// LLMConfig holds the chat completion service settings.
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	TimeoutSec int                 `mapstructure:"timeout_seconds"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
	Prompt     LLMPromptConfig     `mapstructure:"prompt"`
	Breaker    LLMBreakerConfig    `mapstructure:"breaker"`
}

// LLMGenerationConfig holds optional generation parameters.
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// LLMPromptConfig overrides the built-in system instruction.
type LLMPromptConfig struct {
	System string `mapstructure:"system"`
}

// LLMBreakerConfig tunes the circuit breaker guarding the completion API.
type LLMBreakerConfig struct {
	FailureThreshold uint32 `mapstructure:"failure_threshold"`
	OpenSeconds      int    `mapstructure:"open_seconds"`
}

// AssistantConfig bounds the prompt context and the request rate per user.
type AssistantConfig struct {
	MaxHomes      int     `mapstructure:"max_homes"`
	MaxUsages     int     `mapstructure:"max_usages"`
	MaxSnippetLen int     `mapstructure:"max_snippet_len"`
	RatePerMinute float64 `mapstructure:"rate_per_minute"`
	Burst         int     `mapstructure:"burst"`
}

// SimulationConfig holds the background simulator settings.
type SimulationConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	IdleIntervalSeconds int     `mapstructure:"idle_interval_seconds"`
	ErrorBackoffSeconds int     `mapstructure:"error_backoff_seconds"`
	MaxEnergyKWh        float64 `mapstructure:"max_energy_kwh"`
}

// PaginationConfig holds the page size used by every "load more" list.
type PaginationConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// LiveConfig configures the live-update channel.
// When RedisChannel is set, events are relayed through Redis so every instance's hub receives them.
type LiveConfig struct {
	RedisChannel string `mapstructure:"redis_channel"`
}

// KafkaConfig configures the optional usage event stream.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// MQTTConfig configures the optional home-automation publisher.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

// SetDefaults registers the defaults that apply when a key is missing from the file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.sqlite.path", "effisense.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.generation.max_tokens", 300)
	v.SetDefault("llm.breaker.failure_threshold", 5)
	v.SetDefault("llm.breaker.open_seconds", 30)
	v.SetDefault("assistant.max_homes", 2)
	v.SetDefault("assistant.max_usages", 3)
	v.SetDefault("assistant.max_snippet_len", 120)
	v.SetDefault("assistant.rate_per_minute", 10)
	v.SetDefault("assistant.burst", 3)
	v.SetDefault("simulation.enabled", true)
	v.SetDefault("simulation.idle_interval_seconds", 5)
	v.SetDefault("simulation.error_backoff_seconds", 60)
	v.SetDefault("simulation.max_energy_kwh", 5.0)
	v.SetDefault("pagination.page_size", 9)
	v.SetDefault("mqtt.topic_prefix", "effisense")
}

// Init reads the YAML file at configPath into Conf.
// Any key can be overridden through the environment, e.g. EFFISENSE_LLM_API_KEY.
func Init(configPath string) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("effisense")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("failed to read config file: %w", err))
	}

	if err := v.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("failed to decode config into struct: %w", err))
	}
}
