package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/repos"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

// CreateCampaignParams is the campaign creation payload. Settings nil
// means "no settings supplied".
type CreateCampaignParams struct {
	Name        string
	RulesetID   uuid.UUID
	Description string
	Settings    json.RawMessage
}

// UpdateCampaignParams carries mutable campaign fields; nil pointers
// mean "leave unchanged".
type UpdateCampaignParams struct {
	Name        *string
	Description *string
	Status      *string
	Settings    json.RawMessage
}

type CampaignService interface {
	ListCampaigns(ctx context.Context, userID uuid.UUID) ([]*types.Campaign, error)
	CreateCampaign(ctx context.Context, userID uuid.UUID, params CreateCampaignParams) (*types.Campaign, error)
	GetCampaign(ctx context.Context, campaignID, userID uuid.UUID) (*types.Campaign, error)
	UpdateCampaign(ctx context.Context, campaignID, userID uuid.UUID, params UpdateCampaignParams) (*types.Campaign, error)
	DeleteCampaign(ctx context.Context, campaignID, userID uuid.UUID) (bool, error)
}

type campaignService struct {
	db           *gorm.DB
	log          *logger.Logger
	campaignRepo repos.CampaignRepo
	rulesetRepo  repos.RulesetRepo
}

func NewCampaignService(
	db *gorm.DB,
	baseLog *logger.Logger,
	campaignRepo repos.CampaignRepo,
	rulesetRepo repos.RulesetRepo,
) CampaignService {
	serviceLog := baseLog.With("service", "CampaignService")
	return &campaignService{
		db:           db,
		log:          serviceLog,
		campaignRepo: campaignRepo,
		rulesetRepo:  rulesetRepo,
	}
}

func (cs *campaignService) ListCampaigns(ctx context.Context, userID uuid.UUID) ([]*types.Campaign, error) {
	return cs.campaignRepo.ListByUserID(ctx, nil, userID)
}

func (cs *campaignService) CreateCampaign(ctx context.Context, userID uuid.UUID, params CreateCampaignParams) (*types.Campaign, error) {
	var missing []string
	if params.Name == "" {
		missing = append(missing, "name")
	}
	if params.RulesetID == uuid.Nil {
		missing = append(missing, "ruleset_id")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	ruleset, err := cs.rulesetRepo.GetByID(ctx, nil, params.RulesetID)
	if err != nil {
		return nil, fmt.Errorf("load ruleset: %w", err)
	}
	if ruleset == nil {
		return nil, fmt.Errorf("ruleset: %w", ErrNotFound)
	}

	settings, err := requireObject("settings", params.Settings)
	if err != nil {
		return nil, err
	}

	campaign := &types.Campaign{
		ID:          uuid.New(),
		UserID:      userID,
		RulesetID:   params.RulesetID,
		Name:        params.Name,
		Description: params.Description,
		Status:      types.CampaignStatusActive,
		Settings:    settings,
	}
	if _, err := cs.campaignRepo.Create(ctx, nil, campaign); err != nil {
		cs.log.Error("CreateCampaign failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return campaign, nil
}

func (cs *campaignService) GetCampaign(ctx context.Context, campaignID, userID uuid.UUID) (*types.Campaign, error) {
	return cs.campaignRepo.GetByIDForUser(ctx, nil, campaignID, userID)
}

func (cs *campaignService) UpdateCampaign(ctx context.Context, campaignID, userID uuid.UUID, params UpdateCampaignParams) (*types.Campaign, error) {
	campaign, err := cs.campaignRepo.GetByIDForUser(ctx, nil, campaignID, userID)
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	if campaign == nil {
		return nil, nil
	}

	if params.Name != nil {
		campaign.Name = *params.Name
	}
	if params.Description != nil {
		campaign.Description = *params.Description
	}
	if params.Status != nil {
		campaign.Status = *params.Status
	}
	if params.Settings != nil {
		settings, err := requireObject("settings", params.Settings)
		if err != nil {
			return nil, err
		}
		campaign.Settings = settings
	}

	if err := cs.campaignRepo.Save(ctx, nil, campaign); err != nil {
		cs.log.Error("UpdateCampaign failed", "error", err, "campaign_id", campaignID)
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	return campaign, nil
}

// DeleteCampaign removes the campaign plus its characters and the
// overlays scoped to it; the user's global overlays are untouched.
func (cs *campaignService) DeleteCampaign(ctx context.Context, campaignID, userID uuid.UUID) (bool, error) {
	campaign, err := cs.campaignRepo.GetByIDForUser(ctx, nil, campaignID, userID)
	if err != nil {
		return false, fmt.Errorf("load campaign: %w", err)
	}
	if campaign == nil {
		return false, nil
	}
	if err := cs.campaignRepo.Delete(ctx, nil, campaign); err != nil {
		cs.log.Error("DeleteCampaign failed", "error", err, "campaign_id", campaignID)
		return false, fmt.Errorf("delete campaign: %w", err)
	}
	return true, nil
}

// requireObject verifies raw JSON holds an object (not an array or
// scalar) and returns it; nil input and a JSON null both yield an
// empty object so the stored blob always keeps its container shape.
func requireObject(field string, raw json.RawMessage) (datatypes.JSON, error) {
	if raw == nil {
		return datatypes.JSON([]byte("{}")), nil
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &TypeError{Field: field, Want: "an object"}
	}
	if decoded == nil {
		return datatypes.JSON([]byte("{}")), nil
	}
	return datatypes.JSON(raw), nil
}

// requireArray is requireObject's counterpart for list-shaped fields.
func requireArray(field string, raw json.RawMessage) (datatypes.JSON, error) {
	if raw == nil {
		return datatypes.JSON([]byte("[]")), nil
	}
	var decoded []interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &TypeError{Field: field, Want: "an array"}
	}
	if decoded == nil {
		return datatypes.JSON([]byte("[]")), nil
	}
	return datatypes.JSON(raw), nil
}
