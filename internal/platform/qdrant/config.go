package qdrant

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/gradebridge-backend/internal/platform/envutil"
)

const (
	defaultCollection      = "assignments"
	defaultNamespacePrefix = "gb"
	defaultTimeout         = 10 * time.Second
)

type Config struct {
	URL             string
	Collection      string
	NamespacePrefix string
	// VectorDim must equal the embedding width. It falls back to OPENAI_EMBED_DIMENSIONS.
	VectorDim int

	// CreateCollection creates the collection at startup when it does not exist.
	CreateCollection bool
	Timeout          time.Duration
}

type ConfigErrorCode string

const (
	ConfigErrorMissingURL        ConfigErrorCode = "missing_url"
	ConfigErrorInvalidURL        ConfigErrorCode = "invalid_url"
	ConfigErrorMissingCollection ConfigErrorCode = "missing_collection"
	ConfigErrorMissingVectorDim  ConfigErrorCode = "missing_vector_dim"
	ConfigErrorInvalidVectorDim  ConfigErrorCode = "invalid_vector_dim"
)

var configErrorMessages = map[ConfigErrorCode]string{
	ConfigErrorMissingURL:        "QDRANT_URL is required",
	ConfigErrorInvalidURL:        "invalid QDRANT_URL=%q; expected absolute URL like http://qdrant:6333",
	ConfigErrorMissingCollection: "qdrant collection name is required",
	ConfigErrorMissingVectorDim:  "QDRANT_VECTOR_DIM (or OPENAI_EMBED_DIMENSIONS) is required and must be a positive integer",
	ConfigErrorInvalidVectorDim:  "invalid vector dimension %q; expected positive integer",
}

type ConfigError struct {
	Code  ConfigErrorCode
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid qdrant config"
	}
	msg, ok := configErrorMessages[e.Code]
	if !ok {
		return "invalid qdrant config"
	}
	if strings.Contains(msg, "%q") {
		return fmt.Sprintf(msg, e.Value)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveConfigFromEnv reads QDRANT_* variables. The vector width comes from
// QDRANT_VECTOR_DIM, else OPENAI_EMBED_DIMENSIONS, so points match the embedder.
func ResolveConfigFromEnv() (Config, error) {
	rawDim := strings.TrimSpace(os.Getenv("QDRANT_VECTOR_DIM"))
	if rawDim == "" {
		rawDim = strings.TrimSpace(os.Getenv("OPENAI_EMBED_DIMENSIONS"))
	}
	dim := 0
	if rawDim != "" {
		parsed, err := strconv.Atoi(rawDim)
		if err != nil {
			return Config{}, &ConfigError{Code: ConfigErrorInvalidVectorDim, Value: rawDim, Cause: err}
		}
		dim = parsed
	}

	cfg := Config{
		URL:              strings.TrimSpace(os.Getenv("QDRANT_URL")),
		Collection:       envutil.String("QDRANT_COLLECTION", defaultCollection),
		NamespacePrefix:  envutil.String("QDRANT_NAMESPACE_PREFIX", defaultNamespacePrefix),
		VectorDim:        dim,
		CreateCollection: envutil.Bool("QDRANT_CREATE_COLLECTION", false),
		Timeout:          envutil.Seconds("QDRANT_TIMEOUT_SECONDS", defaultTimeout),
	}
	if err := ValidateConfig(cfg, rawDim != ""); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidateConfig checks cfg. hasRawVectorDim=false reports a missing dimension
// separately from an invalid one.
func ValidateConfig(cfg Config, hasRawVectorDim bool) error {
	if cfg.URL == "" {
		return &ConfigError{Code: ConfigErrorMissingURL}
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &ConfigError{Code: ConfigErrorInvalidURL, Value: cfg.URL, Cause: err}
	}
	if strings.TrimSpace(cfg.Collection) == "" {
		return &ConfigError{Code: ConfigErrorMissingCollection}
	}
	if !hasRawVectorDim && cfg.VectorDim == 0 {
		return &ConfigError{Code: ConfigErrorMissingVectorDim}
	}
	if cfg.VectorDim <= 0 {
		return &ConfigError{Code: ConfigErrorInvalidVectorDim, Value: strconv.Itoa(cfg.VectorDim)}
	}
	return nil
}
