package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/gradebridge-backend/internal/domain"
)

// matchAssignmentsSQL ranks guidelines by cosine similarity to the query embedding.
const matchAssignmentsSQL = `
CREATE OR REPLACE FUNCTION match_assignments(
	query_embedding vector,
	match_threshold float,
	match_count int
)
RETURNS TABLE (
	id uuid,
	content text,
	metadata jsonb,
	similarity float
)
LANGUAGE sql STABLE
AS $$
	SELECT
		assignments.id,
		assignments.content,
		assignments.metadata,
		1 - (assignments.embedding <=> query_embedding) AS similarity
	FROM assignments
	WHERE match_threshold <= 0
		OR 1 - (assignments.embedding <=> query_embedding) > match_threshold
	ORDER BY assignments.embedding <=> query_embedding
	LIMIT match_count;
$$;`

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Guideline{},
		&types.EvaluationRecord{},
	)
}

// EnsureMatchFunction installs the similarity search function. Postgres only.
func EnsureMatchFunction(db *gorm.DB) error {
	if err := db.Exec(matchAssignmentsSQL).Error; err != nil {
		return fmt.Errorf("install match_assignments: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if s.driver != DriverPostgres {
		s.log.Warn("Similarity function unavailable on this driver; resolver will use scan fallback")
		return nil
	}
	return EnsureMatchFunction(s.db)
}
