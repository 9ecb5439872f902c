package openai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/gradebridge-backend/internal/platform/envutil"
)

const (
	defaultBaseURL         = "https://api.openai.com"
	defaultModel           = "gpt-4o-mini"
	defaultEmbedModel      = "text-embedding-3-small"
	defaultEmbedDimensions = 384
	defaultTemperature     = 0.1
	defaultTimeout         = 60 * time.Second
	defaultMaxRetries      = 4
	defaultMaxBackoff      = 10 * time.Second
	defaultNoTempModels    = "o1-*,o3-*,o4-*,gpt-5*"
)

type Config struct {
	APIKey              string
	BaseURL             string
	Model               string
	EmbedModel          string
	EmbedDimensions     int
	Temperature         float64
	DisableTemperature  bool
	NoTemperatureModels string
	Timeout             time.Duration
	MaxRetries          int
	MaxBackoff          time.Duration

	// HTTPClient overrides the default client; tests inject a stub transport here.
	HTTPClient *http.Client
}

// ConfigFromEnv reads OPENAI_* variables.
func ConfigFromEnv() Config {
	return Config{
		APIKey:              strings.TrimSpace(envutil.String("OPENAI_API_KEY", "")),
		BaseURL:             envutil.String("OPENAI_BASE_URL", defaultBaseURL),
		Model:               envutil.String("OPENAI_MODEL", defaultModel),
		EmbedModel:          envutil.String("OPENAI_EMBED_MODEL", defaultEmbedModel),
		EmbedDimensions:     envutil.Int("OPENAI_EMBED_DIMENSIONS", defaultEmbedDimensions),
		Temperature:         envutil.Float("OPENAI_TEMPERATURE", defaultTemperature),
		DisableTemperature:  envutil.Bool("OPENAI_DISABLE_TEMPERATURE", false),
		NoTemperatureModels: envutil.String("OPENAI_NO_TEMPERATURE_MODELS", defaultNoTempModels),
		Timeout:             envutil.Seconds("OPENAI_TIMEOUT_SECONDS", defaultTimeout),
		MaxRetries:          envutil.Int("OPENAI_MAX_RETRIES", defaultMaxRetries),
		MaxBackoff:          defaultMaxBackoff,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("missing OPENAI_API_KEY")
	}
	if c.EmbedDimensions < 0 {
		return fmt.Errorf("invalid OPENAI_EMBED_DIMENSIONS: %d", c.EmbedDimensions)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("invalid OPENAI_MAX_RETRIES: %d", c.MaxRetries)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = defaultModel
	}
	if strings.TrimSpace(c.EmbedModel) == "" {
		c.EmbedModel = defaultEmbedModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	return c
}
