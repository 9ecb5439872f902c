package grading

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Guideline is an instructor reference solution keyed by its question text.
// Rows are append-only; several rows may share the same content.
type Guideline struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Content  string         `gorm:"type:text;not null" json:"content"`
	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	// Width is fixed by the embedding provider; the column stays unsized so the
	// configured dimension is enforced by the repo instead of the DDL.
	Embedding pgvector.Vector `gorm:"type:vector" json:"-"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Guideline) TableName() string { return "assignments" }

// GuidelineMatch is a Guideline row returned by the similarity function.
type GuidelineMatch struct {
	ID         uuid.UUID      `json:"id"`
	Content    string         `json:"content"`
	Metadata   datatypes.JSON `json:"metadata"`
	Similarity float64        `json:"similarity"`
}
