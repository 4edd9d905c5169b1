package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Ruleset is a top-level game-data collection (e.g. the D&D 5e SRD).
// SourceConfig holds the derived source-document list; it is rebuilt
// wholesale by ingestion, never patched in place.
type Ruleset struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Key          string         `gorm:"uniqueIndex;not null;column:key" json:"key"`
	Name         string         `gorm:"not null;column:name" json:"name"`
	SourceType   string         `gorm:"not null;column:source_type" json:"source_type"`
	SourceConfig datatypes.JSON `gorm:"column:source_config;type:jsonb" json:"source_config"`
	EntityTypes  datatypes.JSON `gorm:"column:entity_types;type:jsonb" json:"entity_types"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Ruleset) TableName() string {
	return "ruleset"
}
