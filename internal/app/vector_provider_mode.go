package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/gradebridge-backend/internal/platform/qdrant"
)

type VectorProvider string

const (
	VectorProviderPostgres VectorProvider = "postgres"
	VectorProviderQdrant   VectorProvider = "qdrant"
	VectorProviderMemory   VectorProvider = "memory"
)

type VectorProviderConfigErrorCode string

const (
	VectorProviderConfigErrorInvalidProvider      VectorProviderConfigErrorCode = "invalid_provider"
	VectorProviderConfigErrorNeedsPostgres        VectorProviderConfigErrorCode = "provider_requires_postgres"
	VectorProviderConfigErrorMissingQdrantURL     VectorProviderConfigErrorCode = "missing_qdrant_url"
	VectorProviderConfigErrorInvalidQdrantURL     VectorProviderConfigErrorCode = "invalid_qdrant_url"
	VectorProviderConfigErrorMissingQdrantColl    VectorProviderConfigErrorCode = "missing_qdrant_collection"
	VectorProviderConfigErrorMissingQdrantVector  VectorProviderConfigErrorCode = "missing_qdrant_vector_dim"
	VectorProviderConfigErrorInvalidQdrantVector  VectorProviderConfigErrorCode = "invalid_qdrant_vector_dim"
	VectorProviderConfigErrorUnknownQdrantFailure VectorProviderConfigErrorCode = "qdrant_config_error"
)

type VectorProviderConfigError struct {
	Code     VectorProviderConfigErrorCode
	Provider VectorProvider
	DBDriver string
	Cause    error
}

func (e *VectorProviderConfigError) Error() string {
	if e == nil {
		return "invalid vector provider config"
	}
	return fmt.Sprintf(
		"invalid vector provider config (code=%s provider=%q db_driver=%q): %v",
		e.Code,
		e.Provider,
		e.DBDriver,
		e.Cause,
	)
}

func (e *VectorProviderConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type VectorProviderConfig struct {
	Provider VectorProvider
	Qdrant   qdrant.Config
}

// resolveVectorProviderConfig validates the requested provider against the database driver.
// The postgres provider needs pgvector, so it is rejected on sqlite.
func resolveVectorProviderConfig(provider, dbDriver string) (VectorProviderConfig, error) {
	p := VectorProvider(strings.ToLower(strings.TrimSpace(provider)))
	if p == "" {
		p = VectorProviderPostgres
	}
	switch p {
	case VectorProviderPostgres:
		if !strings.EqualFold(strings.TrimSpace(dbDriver), "postgres") {
			return VectorProviderConfig{}, &VectorProviderConfigError{
				Code:     VectorProviderConfigErrorNeedsPostgres,
				Provider: p,
				DBDriver: dbDriver,
				Cause:    errors.New("similarity search over the relational store needs pgvector"),
			}
		}
		return VectorProviderConfig{Provider: p}, nil
	case VectorProviderMemory:
		return VectorProviderConfig{Provider: p}, nil
	case VectorProviderQdrant:
		qcfg, err := qdrant.ResolveConfigFromEnv()
		if err != nil {
			return VectorProviderConfig{}, mapVectorProviderConfigError(dbDriver, err)
		}
		return VectorProviderConfig{Provider: p, Qdrant: qcfg}, nil
	default:
		return VectorProviderConfig{}, &VectorProviderConfigError{
			Code:     VectorProviderConfigErrorInvalidProvider,
			Provider: p,
			DBDriver: dbDriver,
			Cause:    fmt.Errorf("unsupported vector provider %q (want postgres|qdrant|memory)", provider),
		}
	}
}

func mapVectorProviderConfigError(dbDriver string, err error) error {
	code := VectorProviderConfigErrorUnknownQdrantFailure
	var qerr *qdrant.ConfigError
	if errors.As(err, &qerr) {
		switch qerr.Code {
		case qdrant.ConfigErrorMissingURL:
			code = VectorProviderConfigErrorMissingQdrantURL
		case qdrant.ConfigErrorInvalidURL:
			code = VectorProviderConfigErrorInvalidQdrantURL
		case qdrant.ConfigErrorMissingCollection:
			code = VectorProviderConfigErrorMissingQdrantColl
		case qdrant.ConfigErrorMissingVectorDim:
			code = VectorProviderConfigErrorMissingQdrantVector
		case qdrant.ConfigErrorInvalidVectorDim:
			code = VectorProviderConfigErrorInvalidQdrantVector
		}
	}
	return &VectorProviderConfigError{
		Code:     code,
		Provider: VectorProviderQdrant,
		DBDriver: dbDriver,
		Cause:    err,
	}
}
