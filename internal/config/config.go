package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Embedding EmbeddingConfig
	Auth      AuthConfig
	Models    ModelsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type EmbeddingConfig struct {
	URL       string        // embedding server base URL, defaults to http://localhost:8000
	Model     string        // model name, defaults to facenet
	Dim       int           // vector dimensionality, defaults from the model preset
	Threshold float64       // maximum accepted match distance, defaults from the model preset
	Timeout   time.Duration // per-request timeout for embedding calls (default 30s)
}

type AuthConfig struct {
	JWTSecret   string        // secret for signing session tokens
	TokenTTL    time.Duration // session token lifetime (default 1h)
	SampleCount int           // face images required at registration (default 5)
}

type ModelsConfig struct {
	Models map[string]ModelPreset `yaml:"models"`
}

// ModelPreset carries the dimensionality and calibrated match threshold
// for a known embedding model.
type ModelPreset struct {
	Dim       int     `yaml:"dim"`
	Threshold float64 `yaml:"threshold"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a duration.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	model := envString("EMBEDDING_MODEL", "facenet")
	preset := models.Preset(model)

	return &Config{
		Server: ServerConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Embedding: EmbeddingConfig{
			URL:       envString("EMBEDDING_URL", "http://localhost:8000"),
			Model:     model,
			Dim:       envInt("EMBEDDING_DIM", preset.Dim),
			Threshold: envFloat("FACE_MATCH_THRESHOLD", preset.Threshold),
			Timeout:   envDuration("EMBEDDING_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
			TokenTTL:    envDuration("AUTH_TOKEN_TTL", time.Hour),
			SampleCount: envInt("AUTH_FACE_SAMPLES", 5),
		},
		Models: models,
	}
}

// Preset returns the preset for a model name, falling back to the facenet
// defaults when the model is unknown.
func (m *ModelsConfig) Preset(model string) ModelPreset {
	if preset, ok := m.Models[model]; ok {
		return preset
	}
	return ModelPreset{Dim: 128, Threshold: 0.55}
}
