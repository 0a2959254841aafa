// Package config provides environment configuration for the service desk.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Case store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreNATS   = "nats"
)

// Dispatch modes.
const (
	DispatchTools = "tools"
	DispatchAgent = "agent"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	Env string

	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	CORSAllowedOrigins []string

	// Case storage
	CaseStore  string
	SQLitePath string

	// NATS settings
	NATSEnabled  bool
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings
	JWTSecret     string
	JWTExpiration time.Duration

	// LLM settings
	DefaultLLM            string
	LLMModel              string
	LLMMaxTokens          int
	AnthropicAPIKey       string
	OpenAIAPIKey          string
	AzureOpenAIAPIKey     string
	AzureOpenAIEndpoint   string
	AzureOpenAIDeployment string

	// Dispatching
	DispatchMode   string
	HandlerTimeout time.Duration

	// Conversation threads
	ThreadTTL           time.Duration
	ThreadCacheMax      int
	ThreadSweepInterval time.Duration

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// LoadDotEnv loads variables from the given files, or .env when none are
// given, without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Env: getEnv("ENV", "production"),

		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS"),

		// Case storage
		CaseStore:  strings.ToLower(getEnv("CASE_STORE", StoreMemory)),
		SQLitePath: getEnv("SQLITE_PATH", "data/cases.db"),

		// NATS
		NATSEnabled:  getBoolEnv("NATS_ENABLED", false),
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret:     getEnv("JWT_SECRET", "development-secret-change-in-production"),
		JWTExpiration: getDurationEnv("JWT_EXPIRATION", 15*time.Minute),

		// LLM
		DefaultLLM:            strings.ToLower(getEnv("DEFAULT_LLM", "anthropic")),
		LLMModel:              getEnv("LLM_MODEL", ""),
		LLMMaxTokens:          getIntEnv("LLM_MAX_TOKENS", 1024),
		AnthropicAPIKey:       getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		AzureOpenAIAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT", ""),

		// Dispatching
		DispatchMode:   strings.ToLower(getEnv("DISPATCH_MODE", "")),
		HandlerTimeout: getDurationEnv("HANDLER_TIMEOUT", 0),

		// Conversation threads
		ThreadTTL:           getDurationEnv("THREAD_TTL", 24*time.Hour),
		ThreadCacheMax:      getIntEnv("THREAD_CACHE_MAX", 10000),
		ThreadSweepInterval: getDurationEnv("THREAD_SWEEP_INTERVAL", 5*time.Minute),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// LLMAPIKey returns the API key of the selected provider.
func (c *Config) LLMAPIKey() string {
	switch c.DefaultLLM {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "azure":
		return c.AzureOpenAIAPIKey
	}
	return ""
}

// LLMConfigured reports whether the selected provider has credentials.
func (c *Config) LLMConfigured() bool {
	return c.LLMAPIKey() != ""
}

// NATSRequired reports whether the process needs a NATS connection.
func (c *Config) NATSRequired() bool {
	return c.NATSEnabled || c.CaseStore == StoreNATS
}

// EffectiveDispatchMode resolves DispatchMode, defaulting to the agent when
// an LLM is configured.
func (c *Config) EffectiveDispatchMode() string {
	if c.DispatchMode != "" {
		return c.DispatchMode
	}
	if c.LLMConfigured() {
		return DispatchAgent
	}
	return DispatchTools
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	switch c.CaseStore {
	case StoreMemory, StoreNATS:
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when CASE_STORE=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("CASE_STORE must be memory, sqlite or nats, got %q", c.CaseStore))
	}

	switch c.DispatchMode {
	case "", DispatchTools, DispatchAgent:
	default:
		errs = append(errs, fmt.Errorf("DISPATCH_MODE must be tools or agent, got %q", c.DispatchMode))
	}

	switch c.DefaultLLM {
	case "anthropic", "openai":
	case "azure":
		if c.AzureOpenAIAPIKey != "" && (c.AzureOpenAIEndpoint == "" || c.AzureOpenAIDeployment == "") {
			errs = append(errs, errors.New("AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_DEPLOYMENT are required for DEFAULT_LLM=azure"))
		}
	default:
		errs = append(errs, fmt.Errorf("DEFAULT_LLM must be anthropic, openai or azure, got %q", c.DefaultLLM))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.HandlerTimeout < 0 {
		errs = append(errs, errors.New("HANDLER_TIMEOUT cannot be negative"))
	}
	if c.ThreadTTL < 0 {
		errs = append(errs, errors.New("THREAD_TTL cannot be negative"))
	}
	if c.ThreadCacheMax < 0 {
		errs = append(errs, errors.New("THREAD_CACHE_MAX cannot be negative"))
	}
	if c.ThreadSweepInterval <= 0 {
		errs = append(errs, errors.New("THREAD_SWEEP_INTERVAL must be positive"))
	}
	if c.RateLimitRequests <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
