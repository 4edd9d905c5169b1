package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/repos"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

// CharacterParams is the create/update payload for a character. The
// blob fields are raw JSON so their container shape can be checked
// before storage: core_data and class_data must be objects, equipment
// and spells must be arrays.
type CharacterParams struct {
	Name          *string
	CharacterType *string
	Level         *int
	CoreData      json.RawMessage
	ClassData     json.RawMessage
	Equipment     json.RawMessage
	Spells        json.RawMessage
}

type CharacterService interface {
	ListAllCharacters(ctx context.Context, userID uuid.UUID) ([]*types.Character, error)
	ListByCampaign(ctx context.Context, campaignID, userID uuid.UUID) ([]*types.Character, error)
	CreateCharacter(ctx context.Context, campaignID, userID uuid.UUID, params CharacterParams) (*types.Character, error)
	GetCharacter(ctx context.Context, characterID, userID uuid.UUID) (*types.Character, error)
	UpdateCharacter(ctx context.Context, characterID, userID uuid.UUID, params CharacterParams) (*types.Character, error)
	DeleteCharacter(ctx context.Context, characterID, userID uuid.UUID) (bool, error)
}

type characterService struct {
	db            *gorm.DB
	log           *logger.Logger
	characterRepo repos.CharacterRepo
	campaignRepo  repos.CampaignRepo
}

func NewCharacterService(
	db *gorm.DB,
	baseLog *logger.Logger,
	characterRepo repos.CharacterRepo,
	campaignRepo repos.CampaignRepo,
) CharacterService {
	serviceLog := baseLog.With("service", "CharacterService")
	return &characterService{
		db:            db,
		log:           serviceLog,
		characterRepo: characterRepo,
		campaignRepo:  campaignRepo,
	}
}

func (chs *characterService) ListAllCharacters(ctx context.Context, userID uuid.UUID) ([]*types.Character, error) {
	return chs.characterRepo.ListByUserID(ctx, nil, userID)
}

func (chs *characterService) ListByCampaign(ctx context.Context, campaignID, userID uuid.UUID) ([]*types.Character, error) {
	campaign, err := chs.campaignRepo.GetByIDForUser(ctx, nil, campaignID, userID)
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	if campaign == nil {
		return nil, fmt.Errorf("campaign: %w", ErrNotFound)
	}
	return chs.characterRepo.ListByCampaignID(ctx, nil, campaignID)
}

func (chs *characterService) CreateCharacter(ctx context.Context, campaignID, userID uuid.UUID, params CharacterParams) (*types.Character, error) {
	campaign, err := chs.campaignRepo.GetByIDForUser(ctx, nil, campaignID, userID)
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	if campaign == nil {
		return nil, fmt.Errorf("campaign: %w", ErrNotFound)
	}
	if params.Name == nil || *params.Name == "" {
		return nil, &ValidationError{Missing: []string{"name"}}
	}

	coreData, err := requireObject("core_data", params.CoreData)
	if err != nil {
		return nil, err
	}
	classData, err := requireObject("class_data", params.ClassData)
	if err != nil {
		return nil, err
	}
	equipment, err := requireArray("equipment", params.Equipment)
	if err != nil {
		return nil, err
	}
	spells, err := requireArray("spells", params.Spells)
	if err != nil {
		return nil, err
	}

	character := &types.Character{
		ID:            uuid.New(),
		CampaignID:    campaignID,
		UserID:        userID,
		Name:          *params.Name,
		CharacterType: types.CharacterTypePC,
		Level:         1,
		CoreData:      coreData,
		ClassData:     classData,
		Equipment:     equipment,
		Spells:        spells,
	}
	if params.CharacterType != nil {
		character.CharacterType = *params.CharacterType
	}
	if params.Level != nil {
		character.Level = *params.Level
	}

	if _, err := chs.characterRepo.Create(ctx, nil, character); err != nil {
		chs.log.Error("CreateCharacter failed", "error", err, "campaign_id", campaignID)
		return nil, fmt.Errorf("create character: %w", err)
	}
	return character, nil
}

func (chs *characterService) GetCharacter(ctx context.Context, characterID, userID uuid.UUID) (*types.Character, error) {
	return chs.characterRepo.GetByIDForUser(ctx, nil, characterID, userID)
}

func (chs *characterService) UpdateCharacter(ctx context.Context, characterID, userID uuid.UUID, params CharacterParams) (*types.Character, error) {
	character, err := chs.characterRepo.GetByIDForUser(ctx, nil, characterID, userID)
	if err != nil {
		return nil, fmt.Errorf("load character: %w", err)
	}
	if character == nil {
		return nil, nil
	}

	if params.Name != nil && *params.Name != "" {
		character.Name = *params.Name
	}
	if params.CharacterType != nil {
		character.CharacterType = *params.CharacterType
	}
	if params.Level != nil {
		character.Level = *params.Level
	}
	if params.CoreData != nil {
		coreData, err := requireObject("core_data", params.CoreData)
		if err != nil {
			return nil, err
		}
		character.CoreData = coreData
	}
	if params.ClassData != nil {
		classData, err := requireObject("class_data", params.ClassData)
		if err != nil {
			return nil, err
		}
		character.ClassData = classData
	}
	if params.Equipment != nil {
		equipment, err := requireArray("equipment", params.Equipment)
		if err != nil {
			return nil, err
		}
		character.Equipment = equipment
	}
	if params.Spells != nil {
		spells, err := requireArray("spells", params.Spells)
		if err != nil {
			return nil, err
		}
		character.Spells = spells
	}

	if err := chs.characterRepo.Save(ctx, nil, character); err != nil {
		chs.log.Error("UpdateCharacter failed", "error", err, "character_id", characterID)
		return nil, fmt.Errorf("update character: %w", err)
	}
	return character, nil
}

func (chs *characterService) DeleteCharacter(ctx context.Context, characterID, userID uuid.UUID) (bool, error) {
	character, err := chs.characterRepo.GetByIDForUser(ctx, nil, characterID, userID)
	if err != nil {
		return false, fmt.Errorf("load character: %w", err)
	}
	if character == nil {
		return false, nil
	}
	if err := chs.characterRepo.Delete(ctx, nil, character); err != nil {
		chs.log.Error("DeleteCharacter failed", "error", err, "character_id", characterID)
		return false, fmt.Errorf("delete character: %w", err)
	}
	return true, nil
}
