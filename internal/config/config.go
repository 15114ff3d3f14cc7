// Package config loads the application configuration.
//
// Values come from three layers, last wins: built-in defaults, a YAML (or JSON) file,
// and a fixed set of environment variables. The result is validated once and then passed
// explicitly to constructors.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "maslab.yaml"

// Config is the root configuration.
type Config struct {
	Completion CompletionConfig `yaml:"completion"`
	Planner    PlannerConfig    `yaml:"planner"`
	Formatter  FormatterConfig  `yaml:"formatter"`
	Executor   ExecutorConfig   `yaml:"executor"`
	Memory     MemoryConfig     `yaml:"memory"`
	Sessions   SessionsConfig   `yaml:"sessions"`
	Redis      RedisConfig      `yaml:"redis"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`

	// MaxQuerySize bounds accepted queries, in bytes.
	MaxQuerySize int `yaml:"max_query_size" validate:"gte=1"`
}

// CompletionConfig selects the OpenAI-compatible endpoint.
type CompletionConfig struct {
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model" validate:"required"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gte=1"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`

	// Offline replaces the endpoint with the local echo service.
	Offline bool `yaml:"offline"`
}

type PlannerConfig struct {
	Strategy string `yaml:"strategy" validate:"oneof=static generative"`
}

type FormatterConfig struct {
	Strategy string `yaml:"strategy" validate:"oneof=simple generative"`
}

type ExecutorConfig struct {
	// StepIsolation absorbs failing plan steps instead of aborting the executor stage.
	StepIsolation bool `yaml:"step_isolation"`
}

// MemoryConfig selects the note store backend.
type MemoryConfig struct {
	Backend string `yaml:"backend" validate:"oneof=file memory redis sqlite"`
	Path    string `yaml:"path" validate:"required_if=Backend file,required_if=Backend sqlite"`
	TopK    int    `yaml:"top_k" validate:"gte=1,lte=100"`
}

// SessionsConfig selects the state store backend.
type SessionsConfig struct {
	Backend string        `yaml:"backend" validate:"oneof=file memory redis"`
	Path    string        `yaml:"path" validate:"required_if=Backend file"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`

	// EncryptionKey enables AES-256 encryption at rest (base64, 32 bytes).
	// FallbackKeys still decrypt sessions written before a key rotation.
	EncryptionKey string   `yaml:"encryption_key" validate:"omitempty,base64"`
	FallbackKeys  []string `yaml:"fallback_keys" validate:"dive,base64"`

	// Redact masks e-mail addresses and phone numbers (or RedactPatterns, when set)
	// in persisted sessions.
	Redact         bool     `yaml:"redact"`
	RedactPatterns []string `yaml:"redact_patterns"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"required"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Completion: CompletionConfig{
			Model:       "qwen",
			Temperature: 0.2,
			MaxTokens:   1024,
			Timeout:     60 * time.Second,
		},
		Planner:   PlannerConfig{Strategy: "static"},
		Formatter: FormatterConfig{Strategy: "simple"},
		Executor:  ExecutorConfig{StepIsolation: true},
		Memory: MemoryConfig{
			Backend: "file",
			Path:    "memory.json",
			TopK:    3,
		},
		Sessions: SessionsConfig{
			Backend: "file",
			Path:    ".maslab/sessions",
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "maslab:",
		},
		Server:       ServerConfig{Addr: ":8080"},
		Log:          LogConfig{Level: "info"},
		MaxQuerySize: 4096,
	}
}

// Load reads path over the defaults and applies the process environment.
// A missing file is not an error; an empty path means DefaultPath.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// LoadWithEnv is Load with an explicit environment.
func LoadWithEnv(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// YAML is a superset of JSON, so one decoder serves both formats.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	str := map[string]*string{
		"OPENAI_API_BASE":        &cfg.Completion.BaseURL,
		"OPENAI_API_KEY":         &cfg.Completion.APIKey,
		"MODEL_NAME":             &cfg.Completion.Model,
		"MASLAB_PLANNER":         &cfg.Planner.Strategy,
		"MASLAB_FORMATTER":       &cfg.Formatter.Strategy,
		"MASLAB_MEMORY_BACKEND":  &cfg.Memory.Backend,
		"MASLAB_MEMORY_PATH":     &cfg.Memory.Path,
		"MASLAB_SESSION_BACKEND": &cfg.Sessions.Backend,
		"MASLAB_SESSION_KEY":     &cfg.Sessions.EncryptionKey,
		"MASLAB_REDIS_ADDR":      &cfg.Redis.Addr,
		"MASLAB_SERVER_ADDR":     &cfg.Server.Addr,
		"MASLAB_LOG_LEVEL":       &cfg.Log.Level,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("MASLAB_TOP_K"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MASLAB_TOP_K %q: %w", v, err)
		}
		cfg.Memory.TopK = n
	}
	if v, ok := lookup("MASLAB_OFFLINE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MASLAB_OFFLINE %q: %w", v, err)
		}
		cfg.Completion.Offline = b
	}
	return nil
}

var validate = validator.New()

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
