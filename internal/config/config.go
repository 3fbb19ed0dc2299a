package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

// Config is built once at startup and shared read-only by every handler.
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Gemini  GeminiConfig
	Storage StorageConfig
	Static  StaticConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type LLMConfig struct {
	Provider    string
	APIKey      string
	Endpoint    string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type StaticConfig struct {
	Dir   string
	Index string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
			Env:  getEnv("ENV", "development"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(getEnv("LLM_PROVIDER", ProviderDeepSeek)),
			APIKey:      getEnv("DEEPSEEK_API_KEY", ""),
			Endpoint:    getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/chat/completions"),
			Model:       getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", "120s"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Static: StaticConfig{
			Dir:   getEnv("STATIC_DIR", "."),
			Index: getEnv("STATIC_INDEX", "职业规划小助手.html"),
		},
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderDeepSeek:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}

	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.Storage.MaxFileSize)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
