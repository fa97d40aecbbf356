package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic information about the application.
type AppInfo struct {
	Name        string `yaml:"name"`        // application name
	Version     string `yaml:"version"`     // application version
	Environment string `yaml:"environment"` // e.g. "development", "production"
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address, e.g. ":8080"
}

// AuthConfig configures authentication.
type AuthConfig struct {
	JwtSecret  string `yaml:"jwtSecret"`  // HMAC secret for signing tokens
	TokenTTL   int    `yaml:"tokenTTL"`   // JWT lifetime in seconds
	SessionTTL int    `yaml:"sessionTTL"` // routing-session lifetime in seconds
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // e.g. "info", "debug", "warn", "error"
}

// OpenAIConfig holds the OpenAI credential and model selection.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`  // normally left empty; resolved from env
	KeyFile string `yaml:"keyFile"` // insecure fallback: plain file holding the key
	Model   string `yaml:"model"`   // fixed model identifier, e.g. "gpt-4.1"
}

// LLMConfig selects and configures the LLM provider.
type LLMConfig struct {
	Provider string       `yaml:"provider"` // only "openai" is supported
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// OCRConfig configures the OCR fallback for scanned PDFs.
type OCRConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Languages []string `yaml:"languages"` // tesseract language codes, e.g. ["eng", "mar"]
	DPI       float64  `yaml:"dpi"`       // render resolution for page images
}

// SearchConfig holds the tunables of the retrieval pipeline.
type SearchConfig struct {
	CacheTTL                  int `yaml:"cacheTTL"`                  // seconds a cached answer lives
	MaxCachedQueries          int `yaml:"maxCachedQueries"`          // live cache entries per user
	MaxSnippetLength          int `yaml:"maxSnippetLength"`          // max chars per document snippet
	MaxQueryWords             int `yaml:"maxQueryWords"`             // queries above this are rejected
	CategoryMatchThreshold    int `yaml:"categoryMatchThreshold"`    // fuzzy score 0-100
	SubcategoryMatchThreshold int `yaml:"subcategoryMatchThreshold"` // fuzzy score 0-100
	KeywordMatchThreshold     int `yaml:"keywordMatchThreshold"`     // fuzzy score 0-100
}

// MySQLConfig holds the MySQL connection settings.
type MySQLConfig struct {
	Address         string `yaml:"address"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MinIOConfig holds the MinIO object storage settings.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// KafkaConfig holds the settings of the optional audit stream.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// DatabaseConfigs groups all backing store configurations.
type DatabaseConfigs struct {
	MySQL MySQLConfig `yaml:"mysql"`
	Redis RedisConfig `yaml:"redis"`
	MinIO MinIOConfig `yaml:"minio"`
	Kafka KafkaConfig `yaml:"kafka"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App       AppInfo         `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	LLM       LLMConfig       `yaml:"llm"`
	OCR       OCRConfig       `yaml:"ocr"`
	Search    SearchConfig    `yaml:"search"`
	Logger    LoggerConfig    `yaml:"logger"`
	Databases DatabaseConfigs `yaml:"databases"`
}

// LoadConfig loads and parses the YAML configuration file at path,
// applying defaults for unset pipeline tunables.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file '%s': %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 86400
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = 3600
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = "gpt-4.1"
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = []string{"eng", "mar"}
	}
	if c.OCR.DPI <= 0 {
		c.OCR.DPI = 150
	}
	if c.Search.CacheTTL <= 0 {
		c.Search.CacheTTL = 3600
	}
	if c.Search.MaxCachedQueries <= 0 {
		c.Search.MaxCachedQueries = 10
	}
	if c.Search.MaxSnippetLength <= 0 {
		c.Search.MaxSnippetLength = 1500
	}
	if c.Search.MaxQueryWords <= 0 {
		c.Search.MaxQueryWords = 100
	}
	if c.Search.CategoryMatchThreshold <= 0 {
		c.Search.CategoryMatchThreshold = 70
	}
	if c.Search.SubcategoryMatchThreshold <= 0 {
		c.Search.SubcategoryMatchThreshold = 70
	}
	if c.Search.KeywordMatchThreshold <= 0 {
		c.Search.KeywordMatchThreshold = 75
	}
}

// ResolveAPIKey returns the OpenAI credential, preferring the OPENAI_API_KEY
// environment variable over the config value, and finally falling back to the
// configured key file. Storing the key in a file is insecure and exists only
// for deployments that cannot inject environment variables.
func (c *OpenAIConfig) ResolveAPIKey() string {
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return key
	}
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	if c.KeyFile == "" {
		return ""
	}
	f, err := os.Open(c.KeyFile)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if after, ok := strings.CutPrefix(line, "OPENAI_API_KEY="); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}
