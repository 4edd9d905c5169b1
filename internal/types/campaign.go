package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Campaign statuses.
const (
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

type Campaign struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	RulesetID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"ruleset_id"`
	Ruleset     *Ruleset       `gorm:"foreignKey:RulesetID;references:ID" json:"-"`
	Name        string         `gorm:"not null;column:name" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	Status      string         `gorm:"not null;default:active;column:status" json:"status"`
	Settings    datatypes.JSON `gorm:"column:settings;type:jsonb" json:"settings"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaign"
}
