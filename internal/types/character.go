package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Character kinds.
const (
	CharacterTypePC  = "pc"
	CharacterTypeNPC = "npc"
)

type Character struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CampaignID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"campaign_id"`
	Campaign      *Campaign      `gorm:"constraint:OnDelete:CASCADE;foreignKey:CampaignID;references:ID" json:"-"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Name          string         `gorm:"not null;column:name" json:"name"`
	CharacterType string         `gorm:"not null;default:pc;column:character_type" json:"character_type"`
	Level         int            `gorm:"not null;default:1;column:level" json:"level"`
	CoreData      datatypes.JSON `gorm:"column:core_data;type:jsonb" json:"core_data"`
	ClassData     datatypes.JSON `gorm:"column:class_data;type:jsonb" json:"class_data"`
	Equipment     datatypes.JSON `gorm:"column:equipment;type:jsonb" json:"equipment"`
	Spells        datatypes.JSON `gorm:"column:spells;type:jsonb" json:"spells"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Character) TableName() string {
	return "character"
}
