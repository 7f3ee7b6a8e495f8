package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Env          string
	Host         string
	Port         string
	Debug        bool
	AllowedHosts []string

	DatabaseURL string
	DBMinConns  int
	DBMaxConns  int
	AutoMigrate bool

	EmbedProvider    string
	EmbedModel       string
	EmbedDim         int
	HuggingFaceToken string
	GeminiAPIKey     string
	OpenAIAPIKey     string
	OpenAIBaseURL    string

	ChunkSize        int
	FetchTimeout     time.Duration
	RequestTimeout   time.Duration
	MaxDocumentBytes int64

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
}

const (
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
	ProviderOpenAI      = "openai"
)

var defaultEmbedModels = map[string]string{
	ProviderHuggingFace: "sentence-transformers/all-MiniLM-L6-v2",
	ProviderGemini:      "text-embedding-004",
	ProviderOpenAI:      "text-embedding-3-small",
}

// defaultEmbedDims are the output sizes of defaultEmbedModels.
var defaultEmbedDims = map[string]int{
	ProviderHuggingFace: 384,
	ProviderGemini:      768,
	ProviderOpenAI:      1536,
}

// LoadConfig reads configs/.env.base and configs/.env.<ENV> into the process
// environment, builds the config from it and validates it.
func LoadConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load builds the config without validating it. Tools that only need part of
// it, such as the migration command, validate what they use.
func Load() (*Config, error) {
	if err := loadEnvFiles("configs"); err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:          getEnv("ENV", "local"),
		Host:         getEnv("HOST", "127.0.0.1"),
		Port:         getEnv("PORT", "8000"),
		Debug:        getEnvBool("DEBUG", true),
		AllowedHosts: getEnvList("ALLOWED_HOSTS"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMinConns:  getEnvInt("DB_MIN_CONNS", 1),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", false),

		EmbedProvider:    strings.ToLower(getEnv("EMBED_PROVIDER", ProviderHuggingFace)),
		HuggingFaceToken: getEnv("HUGGINGFACEHUB_API_TOKEN", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),

		ChunkSize:        getEnvInt("CHUNK_SIZE", 1000),
		FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 60*time.Second),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 120*time.Second),
		MaxDocumentBytes: int64(getEnvInt("MAX_DOCUMENT_BYTES", 50<<20)),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
	}
	cfg.EmbedModel = getEnv("EMBED_MODEL", defaultEmbedModels[cfg.EmbedProvider])
	cfg.EmbedDim = getEnvInt("EMBED_DIM", defaultEmbedDims[cfg.EmbedProvider])
	return cfg, nil
}

// ValidateDatabase checks the connection settings.
func (c *Config) ValidateDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL not set")
	}
	if c.DBMinConns < 0 || c.DBMaxConns < 1 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid pool size: min=%d max=%d", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}

	switch c.EmbedProvider {
	case ProviderHuggingFace:
		if c.HuggingFaceToken == "" {
			return errors.New("HUGGINGFACEHUB_API_TOKEN not set")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY not set")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY not set")
		}
	default:
		return fmt.Errorf("unknown EMBED_PROVIDER %q", c.EmbedProvider)
	}
	if c.EmbedDim <= 0 {
		return fmt.Errorf("EMBED_DIM must be positive, got %d", c.EmbedDim)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// S3Enabled reports whether s3:// sources can be resolved.
func (c *Config) S3Enabled() bool {
	return c.AwsAccessKey != "" && c.AwsSecretKey != ""
}

// loadEnvFiles merges .env.base and .env.<ENV> (the latter wins) and exports
// every key that is not already set in the real environment.
func loadEnvFiles(dir string) error {
	env := getEnv("ENV", "local")

	var files []string
	for _, name := range []string{".env.base", ".env." + env} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil
	}

	values, err := godotenv.Read(files...)
	if err != nil {
		return fmt.Errorf("read env files: %w", err)
	}
	for k, v := range values {
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("not an int, using default")
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Bool("default", def).Msg("not a bool, using default")
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Dur("default", def).Msg("not a duration, using default")
		return def
	}
	return d
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
