package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yungbote/gradebridge-backend/internal/analytics"
	"github.com/yungbote/gradebridge-backend/internal/data/db"
	"github.com/yungbote/gradebridge-backend/internal/resolver"
)

const (
	configFileEnv = "GRADEBRIDGE_CONFIG"
	envPrefix     = "GRADEBRIDGE_"
)

type Config struct {
	Environment string `koanf:"environment"`
	LogMode     string `koanf:"log_mode"`
	Addr        string `koanf:"addr"`
	// CORSOrigins is a comma separated allow list; empty keeps the localhost defaults.
	CORSOrigins string `koanf:"cors_origins"`

	DBDriver   string `koanf:"db_driver"`
	DBDSN      string `koanf:"db_dsn"`
	DBLogLevel string `koanf:"db_log_level"`

	// VectorProvider is postgres, qdrant or memory.
	VectorProvider string `koanf:"vector_provider"`

	ResolverMatchThreshold float64 `koanf:"resolver_match_threshold"`
	ResolverScanLimit      int     `koanf:"resolver_scan_limit"`

	GradingTimeoutSeconds int     `koanf:"grading_timeout_seconds"`
	GradingTemperature    float64 `koanf:"grading_temperature"`

	RecentLimit            int `koanf:"recent_limit"`
	ShutdownTimeoutSeconds int `koanf:"shutdown_timeout_seconds"`
}

func defaultConfig() Config {
	return Config{
		Environment:            "development",
		LogMode:                "development",
		Addr:                   ":8080",
		DBDriver:               db.DriverPostgres,
		DBLogLevel:             "warn",
		VectorProvider:         string(VectorProviderPostgres),
		ResolverMatchThreshold: resolver.DefaultMatchThreshold,
		ResolverScanLimit:      resolver.DefaultScanLimit,
		GradingTimeoutSeconds:  90,
		GradingTemperature:     0.1,
		RecentLimit:            analytics.DefaultRecentLimit,
		ShutdownTimeoutSeconds: 15,
	}
}

// LoadConfig layers defaults, the YAML file named by GRADEBRIDGE_CONFIG, then
// GRADEBRIDGE_* environment variables (GRADEBRIDGE_DB_DSN -> db_dsn).
func LoadConfig() (Config, error) {
	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := defaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr must not be empty")
	}
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return errors.New("db_dsn is required for the postgres driver")
		}
	case db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.ResolverScanLimit <= 0 {
		return fmt.Errorf("resolver_scan_limit must be positive, got %d", c.ResolverScanLimit)
	}
	if c.GradingTimeoutSeconds <= 0 {
		return fmt.Errorf("grading_timeout_seconds must be positive, got %d", c.GradingTimeoutSeconds)
	}
	return nil
}

func (c Config) corsOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
