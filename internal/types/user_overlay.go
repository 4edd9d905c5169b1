package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Overlay kinds. Modify and homebrew are merged identically today; the
// distinction is presentational and kept in the model on purpose.
const (
	OverlayTypeModify   = "modify"
	OverlayTypeHomebrew = "homebrew"
	OverlayTypeDisable  = "disable"
)

// UserOverlay is one user's customization of one ruleset entity,
// addressed by (ruleset, entity_type, source_key). CampaignID null
// means the overlay is global for that user; each campaign is an
// independent slot on top of the global one. OverlayData is empty for
// disable overlays.
type UserOverlay struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_overlay_slot" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	RulesetID   uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:uq_overlay_slot" json:"ruleset_id"`
	Ruleset     *Ruleset       `gorm:"constraint:OnDelete:CASCADE;foreignKey:RulesetID;references:ID" json:"-"`
	EntityType  string         `gorm:"not null;column:entity_type;uniqueIndex:uq_overlay_slot" json:"entity_type"`
	SourceKey   string         `gorm:"not null;column:source_key;uniqueIndex:uq_overlay_slot" json:"source_key"`
	OverlayType string         `gorm:"not null;column:overlay_type" json:"overlay_type"`
	OverlayData datatypes.JSON `gorm:"column:overlay_data;type:jsonb" json:"overlay_data"`
	CampaignID  *uuid.UUID     `gorm:"type:uuid;index;uniqueIndex:uq_overlay_slot" json:"campaign_id"`
	Campaign    *Campaign      `gorm:"constraint:OnDelete:CASCADE;foreignKey:CampaignID;references:ID" json:"-"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserOverlay) TableName() string {
	return "user_overlay"
}

// ValidOverlayType reports whether kind is one of the recognized
// overlay kinds.
func ValidOverlayType(kind string) bool {
	switch kind {
	case OverlayTypeModify, OverlayTypeHomebrew, OverlayTypeDisable:
		return true
	}
	return false
}
