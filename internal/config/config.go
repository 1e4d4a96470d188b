package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// MinimumAPIVersion is the oldest Azure OpenAI preview API version the service talks to
const MinimumAPIVersion = "2024-02-15-preview"

// DefaultSystemMessage is used when AZURE_OPENAI_SYSTEM_MESSAGE is not set
const DefaultSystemMessage = "You are an AI assistant that helps people find information."

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Project   ProjectConfig   `mapstructure:"project"`
	Database  DatabaseConfig  `mapstructure:"database"`
	SQL       SQLConfig       `mapstructure:"sql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// OpenAIConfig describes the Azure OpenAI deployment used for completions
type OpenAIConfig struct {
	Resource      string          `mapstructure:"resource"`
	Model         string          `mapstructure:"model"`
	Endpoint      string          `mapstructure:"endpoint" validate:"omitempty,url"`
	Key           string          `mapstructure:"key"`
	Temperature   float64         `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TopP          float64         `mapstructure:"top_p" validate:"gte=0,lte=1"`
	MaxTokens     int             `mapstructure:"max_tokens" validate:"gte=0"`
	StopSequence  string          `mapstructure:"stop_sequence"`
	SystemMessage string          `mapstructure:"system_message"`
	APIVersion    string          `mapstructure:"api_version" validate:"required"`
	Stream        bool            `mapstructure:"stream"`
	Embedding     EmbeddingConfig `mapstructure:"embedding"`
}

type EmbeddingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Key      string `mapstructure:"key"`
	Name     string `mapstructure:"name"`
}

// ProjectConfig selects the project-scoped client instead of the direct endpoint
type ProjectConfig struct {
	UseClient bool   `mapstructure:"use_client"`
	Endpoint  string `mapstructure:"endpoint" validate:"omitempty,url"`
}

type DatabaseConfig struct {
	Driver            string `mapstructure:"driver" validate:"oneof=postgres mysql sqlite"`
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port" validate:"min=0,max=65535"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	SSLMode           string `mapstructure:"ssl_mode"`
	ManagedIdentityID string `mapstructure:"managed_identity_id"`
	MaxConns          int32  `mapstructure:"max_conns"`
}

func (c DatabaseConfig) DSN() string {
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Host, c.Port, c.Database)
	case "sqlite":
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", c.Database)
	default:
		return fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
		)
	}
}

// SQLConfig controls SQL generation for chat_with_data
type SQLConfig struct {
	SystemPrompt     string `mapstructure:"system_prompt"`
	ExecuteGenerated bool   `mapstructure:"execute_generated"`
	MaxRows          int    `mapstructure:"max_rows" validate:"min=1"`
	MaxResultChars   int    `mapstructure:"max_result_chars" validate:"min=1"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether a Redis host was configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"min=1"`
	Burst             int `mapstructure:"burst" validate:"min=0"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	Dir    string `mapstructure:"dir"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// SetConfigFile reports a missing file as a plain fs error, not ConfigFileNotFoundError
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)
	normalizeFlags(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate rejects values that can never work, leaving missing credentials to fail at use
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// flagKeys are switches the deployment sets as "True"/"False". They never fail
// to load: only a case-insensitive "true" turns one on.
var flagKeys = []string{
	"openai.stream",
	"project.use_client",
	"sql.execute_generated",
}

func normalizeFlags(v *viper.Viper) {
	for _, key := range flagKeys {
		v.Set(key, strings.EqualFold(v.GetString(key), "true"))
	}
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 50505)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// OpenAI
	v.SetDefault("openai.temperature", 0)
	v.SetDefault("openai.top_p", 1.0)
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.system_message", DefaultSystemMessage)
	v.SetDefault("openai.api_version", MinimumAPIVersion)
	v.SetDefault("openai.stream", true)
	v.SetDefault("openai.embedding.name", "")

	// Project client
	v.SetDefault("project.use_client", false)

	// Database
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)

	// SQL generation
	v.SetDefault("sql.execute_generated", false)
	v.SetDefault("sql.max_rows", 1000)
	v.SetDefault("sql.max_result_chars", 20000)

	// Redis
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Rate limit
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.port", "SERVER_PORT")

	// Azure OpenAI
	v.BindEnv("openai.resource", "AZURE_OPENAI_RESOURCE")
	v.BindEnv("openai.model", "AZURE_OPENAI_MODEL")
	v.BindEnv("openai.endpoint", "AZURE_OPENAI_ENDPOINT")
	v.BindEnv("openai.key", "AZURE_OPENAI_KEY")
	v.BindEnv("openai.temperature", "AZURE_OPENAI_TEMPERATURE")
	v.BindEnv("openai.top_p", "AZURE_OPENAI_TOP_P")
	v.BindEnv("openai.max_tokens", "AZURE_OPENAI_MAX_TOKENS")
	v.BindEnv("openai.stop_sequence", "AZURE_OPENAI_STOP_SEQUENCE")
	v.BindEnv("openai.system_message", "AZURE_OPENAI_SYSTEM_MESSAGE")
	v.BindEnv("openai.api_version", "AZURE_OPENAI_PREVIEW_API_VERSION")
	v.BindEnv("openai.stream", "AZURE_OPENAI_STREAM")
	v.BindEnv("openai.embedding.endpoint", "AZURE_OPENAI_EMBEDDING_ENDPOINT")
	v.BindEnv("openai.embedding.key", "AZURE_OPENAI_EMBEDDING_KEY")
	v.BindEnv("openai.embedding.name", "AZURE_OPENAI_EMBEDDING_NAME")

	// AI project
	v.BindEnv("project.use_client", "USE_AI_PROJECT_CLIENT")
	v.BindEnv("project.endpoint", "AZURE_AI_AGENT_ENDPOINT")

	// Database
	v.BindEnv("database.driver", "SQLDB_DRIVER")
	v.BindEnv("database.host", "SQLDB_SERVER")
	v.BindEnv("database.port", "SQLDB_PORT")
	v.BindEnv("database.database", "SQLDB_DATABASE")
	v.BindEnv("database.user", "SQLDB_USERNAME")
	v.BindEnv("database.password", "SQLDB_PASSWORD")
	v.BindEnv("database.ssl_mode", "SQLDB_SSLMODE")
	v.BindEnv("database.managed_identity_id", "SQLDB_USER_MID")

	// SQL generation
	v.BindEnv("sql.system_prompt", "SQL_SYSTEM_PROMPT")
	v.BindEnv("sql.execute_generated", "SQL_EXECUTE_GENERATED")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
	v.BindEnv("logging.dir", "LOG_DIR")
}
