// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"` // max duration a pass may hold the pass lock
}

// ProviderConfig describes the async generation provider endpoint.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// PromptConfig configures the optional prompt enhancer.
type PromptConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OpenAIKey string `yaml:"openai_key"`
	GeminiKey string `yaml:"gemini_key"`
	GeminiURL string `yaml:"gemini_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"` // prompt token budget before truncation
}

type StorageConfig struct {
	BaseURL string `yaml:"base_url"`
	Bucket  string `yaml:"bucket"`
	APIKey  string `yaml:"api_key"`
}

type SchedulerConfig struct {
	BatchSize          int           `yaml:"batch_size"`          // max schedules considered per dispatch pass
	CompletionBatch    int           `yaml:"completion_batch"`    // max records checked per completion pass
	DispatchInterval   time.Duration `yaml:"dispatch_interval"`   // worker-mode cadence
	CompletionInterval time.Duration `yaml:"completion_interval"` // worker-mode cadence
	Workers            int           `yaml:"workers"`             // pool size for pass execution
	WorkerMode         bool          `yaml:"worker_mode"`         // run internal tickers in addition to the HTTP triggers
}

type APIConfig struct {
	Port       int           `yaml:"port"`
	HMACSecret string        `yaml:"hmac_secret"` // service-token secret for the trigger endpoints
	TokenTTL   time.Duration `yaml:"token_ttl"`
}

type AlertConfig struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        int64  `yaml:"chat_id"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Provider  ProviderConfig  `yaml:"provider"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	API       APIConfig       `yaml:"api"`
	Alert     AlertConfig     `yaml:"alert"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Scheduler.BatchSize <= 0 {
		cfg.Scheduler.BatchSize = 5
	}
	if cfg.Scheduler.CompletionBatch <= 0 {
		cfg.Scheduler.CompletionBatch = 50
	}
	if cfg.Scheduler.DispatchInterval <= 0 {
		cfg.Scheduler.DispatchInterval = time.Minute
	}
	if cfg.Scheduler.CompletionInterval <= 0 {
		cfg.Scheduler.CompletionInterval = time.Minute
	}
	if cfg.Scheduler.Workers <= 0 {
		cfg.Scheduler.Workers = 4
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 5 * time.Minute
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.TokenTTL <= 0 {
		cfg.API.TokenTTL = 30 * time.Minute
	}
	if cfg.Prompt.Model == "" {
		cfg.Prompt.Model = "gpt-4o-mini"
	}
	if cfg.Prompt.MaxTokens <= 0 {
		cfg.Prompt.MaxTokens = 512
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Provider.BaseURL == "" {
		return nil, errors.New("provider.base_url is required")
	}
	if cfg.Storage.BaseURL == "" || cfg.Storage.Bucket == "" {
		return nil, errors.New("storage.base_url and storage.bucket are required")
	}
	if cfg.API.HMACSecret == "" {
		return nil, errors.New("api.hmac_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
