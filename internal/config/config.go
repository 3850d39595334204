package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Provider string

const (
	ProviderVertex Provider = "vertex"
	ProviderOpenAI Provider = "openai"
	ProviderMock   Provider = "mock"
)

type QuotaBackend string

const (
	QuotaFirestore QuotaBackend = "firestore"
	QuotaSQLite    QuotaBackend = "sqlite"
	QuotaMemory    QuotaBackend = "memory"
)

type Config struct {
	Port string `yaml:"port"`

	Provider  Provider `yaml:"provider"`
	TextModel string   `yaml:"text_model"`

	GCPProjectID string `yaml:"gcp_project"`
	GCPLocation  string `yaml:"gcp_location"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	ImageModel string `yaml:"image_model"`

	QuotaBackend    QuotaBackend `yaml:"quota_backend"`
	QuotaCollection string       `yaml:"quota_collection"`
	QuotaDBPath     string       `yaml:"quota_db_path"`
	MaxImagesPerDay int          `yaml:"max_images_per_day"`

	MaxSessions int `yaml:"max_sessions"`
	MaxTurns    int `yaml:"max_turns"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config. Defaults mirror the
// reference deployment: 5 images per day, 100 sessions, 20 turns each.
func Load() *Config {
	return &Config{
		Port: getEnv("AGENTE_PORT", "8080"),

		Provider:  Provider(getEnv("AGENTE_LLM_PROVIDER", string(ProviderVertex))),
		TextModel: getEnv("AGENTE_TEXT_MODEL", "gemini-2.5-flash"),

		GCPProjectID: getEnv("AGENTE_GCP_PROJECT", ""),
		GCPLocation:  getEnv("AGENTE_GCP_LOCATION", "us-east1"),

		OpenAIAPIKey:  getEnv("AGENTE_OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("AGENTE_OPENAI_BASE_URL", ""),

		ImageModel: getEnv("AGENTE_IMAGE_MODEL", "imagen-3.0-generate-002"),

		QuotaBackend:    QuotaBackend(getEnv("AGENTE_QUOTA_BACKEND", string(QuotaMemory))),
		QuotaCollection: getEnv("AGENTE_QUOTA_COLLECTION", "tbl_image_usage"),
		QuotaDBPath:     getEnv("AGENTE_QUOTA_DB_PATH", "image_usage.db"),
		MaxImagesPerDay: getIntEnv("AGENTE_MAX_IMAGES_PER_DAY", 5),

		MaxSessions: getIntEnv("AGENTE_MAX_SESSIONS", 100),
		MaxTurns:    getIntEnv("AGENTE_MAX_TURNS", 20),

		RequestTimeout: getDurationEnv("AGENTE_REQUEST_TIMEOUT", 10*time.Second),
	}
}

// LoadFile layers a YAML config file over the env-derived defaults.
// Env vars win for values the file leaves zero.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	merge(cfg, &file)
	return cfg, nil
}

func merge(dst, src *Config) {
	if src.Port != "" {
		dst.Port = src.Port
	}
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.TextModel != "" {
		dst.TextModel = src.TextModel
	}
	if src.GCPProjectID != "" {
		dst.GCPProjectID = src.GCPProjectID
	}
	if src.GCPLocation != "" {
		dst.GCPLocation = src.GCPLocation
	}
	if src.OpenAIAPIKey != "" {
		dst.OpenAIAPIKey = src.OpenAIAPIKey
	}
	if src.OpenAIBaseURL != "" {
		dst.OpenAIBaseURL = src.OpenAIBaseURL
	}
	if src.ImageModel != "" {
		dst.ImageModel = src.ImageModel
	}
	if src.QuotaBackend != "" {
		dst.QuotaBackend = src.QuotaBackend
	}
	if src.QuotaCollection != "" {
		dst.QuotaCollection = src.QuotaCollection
	}
	if src.QuotaDBPath != "" {
		dst.QuotaDBPath = src.QuotaDBPath
	}
	if src.MaxImagesPerDay != 0 {
		dst.MaxImagesPerDay = src.MaxImagesPerDay
	}
	if src.MaxSessions != 0 {
		dst.MaxSessions = src.MaxSessions
	}
	if src.MaxTurns != 0 {
		dst.MaxTurns = src.MaxTurns
	}
	if src.RequestTimeout != 0 {
		dst.RequestTimeout = src.RequestTimeout
	}
}

// Validate checks provider/backend combinations before wiring.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderVertex:
		if c.GCPProjectID == "" {
			return fmt.Errorf("AGENTE_GCP_PROJECT must be set for the vertex provider")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("AGENTE_OPENAI_API_KEY must be set for the openai provider")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}

	switch c.QuotaBackend {
	case QuotaFirestore:
		if c.GCPProjectID == "" {
			return fmt.Errorf("AGENTE_GCP_PROJECT must be set for the firestore quota backend")
		}
	case QuotaSQLite, QuotaMemory:
	default:
		return fmt.Errorf("unknown quota backend %q", c.QuotaBackend)
	}

	if c.MaxImagesPerDay < 0 {
		return fmt.Errorf("max images per day must not be negative")
	}
	return nil
}
