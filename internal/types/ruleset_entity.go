package types

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RulesetEntity is one game-data item (spell, creature, item, ...)
// inside a ruleset. Entities are written only by ingestion; user
// customization happens through UserOverlay, never by mutating rows
// here. SourceKey is the upstream identifier, unique per
// (ruleset, entity_type). DocumentKey names the sourcebook the entity
// came from and may be null for manually authored data.
type RulesetEntity struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RulesetID   uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_ruleset_entity" json:"ruleset_id"`
	Ruleset     *Ruleset       `gorm:"constraint:OnDelete:CASCADE;foreignKey:RulesetID;references:ID" json:"-"`
	EntityType  string         `gorm:"not null;index;column:entity_type;uniqueIndex:uq_ruleset_entity" json:"entity_type"`
	SourceKey   string         `gorm:"not null;column:source_key;uniqueIndex:uq_ruleset_entity" json:"source_key"`
	Name        string         `gorm:"not null;index;column:name" json:"name"`
	DocumentKey *string        `gorm:"index;column:document_key" json:"document_key"`
	EntityData  datatypes.JSON `gorm:"not null;column:entity_data;type:jsonb" json:"entity_data,omitempty"`
}

func (RulesetEntity) TableName() string {
	return "ruleset_entity"
}
