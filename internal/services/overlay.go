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

// CreateOverlayParams is the payload for creating an overlay. A nil
// OverlayData means the field was absent; an empty map is a valid
// payload (the disable case).
type CreateOverlayParams struct {
	RulesetID   uuid.UUID
	EntityType  string
	SourceKey   string
	OverlayType string
	OverlayData map[string]interface{}
	CampaignID  *uuid.UUID
}

// UpdateOverlayParams carries the mutable overlay fields; nil means
// "leave unchanged".
type UpdateOverlayParams struct {
	OverlayType *string
	OverlayData map[string]interface{}
}

type OverlayService interface {
	ListOverlays(ctx context.Context, userID uuid.UUID, filter repos.OverlayFilter) ([]*types.UserOverlay, error)
	CreateOverlay(ctx context.Context, userID uuid.UUID, params CreateOverlayParams) (*types.UserOverlay, error)
	UpdateOverlay(ctx context.Context, overlayID, userID uuid.UUID, params UpdateOverlayParams) (*types.UserOverlay, error)
	DeleteOverlay(ctx context.Context, overlayID, userID uuid.UUID) (bool, error)
}

type overlayService struct {
	db           *gorm.DB
	log          *logger.Logger
	overlayRepo  repos.OverlayRepo
	rulesetRepo  repos.RulesetRepo
	campaignRepo repos.CampaignRepo
}

func NewOverlayService(
	db *gorm.DB,
	baseLog *logger.Logger,
	overlayRepo repos.OverlayRepo,
	rulesetRepo repos.RulesetRepo,
	campaignRepo repos.CampaignRepo,
) OverlayService {
	serviceLog := baseLog.With("service", "OverlayService")
	return &overlayService{
		db:           db,
		log:          serviceLog,
		overlayRepo:  overlayRepo,
		rulesetRepo:  rulesetRepo,
		campaignRepo: campaignRepo,
	}
}

func (ovs *overlayService) ListOverlays(ctx context.Context, userID uuid.UUID, filter repos.OverlayFilter) ([]*types.UserOverlay, error) {
	overlays, err := ovs.overlayRepo.ListForUser(ctx, nil, userID, filter)
	if err != nil {
		ovs.log.Error("ListOverlays failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("list overlays: %w", err)
	}
	return overlays, nil
}

func (ovs *overlayService) CreateOverlay(ctx context.Context, userID uuid.UUID, params CreateOverlayParams) (*types.UserOverlay, error) {
	var missing []string
	if params.RulesetID == uuid.Nil {
		missing = append(missing, "ruleset_id")
	}
	if params.EntityType == "" {
		missing = append(missing, "entity_type")
	}
	if params.SourceKey == "" {
		missing = append(missing, "source_key")
	}
	if params.OverlayType == "" {
		missing = append(missing, "overlay_type")
	}
	if params.OverlayData == nil {
		missing = append(missing, "overlay_data")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	if !types.ValidOverlayType(params.OverlayType) {
		return nil, fmt.Errorf("invalid overlay_type %q", params.OverlayType)
	}

	ruleset, err := ovs.rulesetRepo.GetByID(ctx, nil, params.RulesetID)
	if err != nil {
		return nil, fmt.Errorf("load ruleset: %w", err)
	}
	if ruleset == nil {
		return nil, fmt.Errorf("ruleset: %w", ErrNotFound)
	}
	if params.CampaignID != nil {
		campaign, err := ovs.campaignRepo.GetByIDForUser(ctx, nil, *params.CampaignID, userID)
		if err != nil {
			return nil, fmt.Errorf("load campaign: %w", err)
		}
		if campaign == nil {
			return nil, fmt.Errorf("campaign: %w", ErrNotFound)
		}
	}

	encoded, err := json.Marshal(params.OverlayData)
	if err != nil {
		return nil, fmt.Errorf("encode overlay data: %w", err)
	}

	overlay := &types.UserOverlay{
		ID:          uuid.New(),
		UserID:      userID,
		RulesetID:   params.RulesetID,
		EntityType:  params.EntityType,
		SourceKey:   params.SourceKey,
		OverlayType: params.OverlayType,
		OverlayData: datatypes.JSON(encoded),
		CampaignID:  params.CampaignID,
	}
	created, err := ovs.overlayRepo.UpsertScoped(ctx, nil, overlay)
	if err != nil {
		ovs.log.Error("CreateOverlay failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("create overlay: %w", err)
	}
	return created, nil
}

func (ovs *overlayService) UpdateOverlay(ctx context.Context, overlayID, userID uuid.UUID, params UpdateOverlayParams) (*types.UserOverlay, error) {
	overlay, err := ovs.overlayRepo.GetByIDForUser(ctx, nil, overlayID, userID)
	if err != nil {
		return nil, fmt.Errorf("load overlay: %w", err)
	}
	if overlay == nil {
		return nil, nil
	}

	if params.OverlayType != nil {
		if !types.ValidOverlayType(*params.OverlayType) {
			return nil, fmt.Errorf("invalid overlay_type %q", *params.OverlayType)
		}
		overlay.OverlayType = *params.OverlayType
	}
	if params.OverlayData != nil {
		encoded, err := json.Marshal(params.OverlayData)
		if err != nil {
			return nil, fmt.Errorf("encode overlay data: %w", err)
		}
		overlay.OverlayData = datatypes.JSON(encoded)
	}

	if err := ovs.overlayRepo.Save(ctx, nil, overlay); err != nil {
		ovs.log.Error("UpdateOverlay failed", "error", err, "overlay_id", overlayID)
		return nil, fmt.Errorf("update overlay: %w", err)
	}
	return overlay, nil
}

func (ovs *overlayService) DeleteOverlay(ctx context.Context, overlayID, userID uuid.UUID) (bool, error) {
	overlay, err := ovs.overlayRepo.GetByIDForUser(ctx, nil, overlayID, userID)
	if err != nil {
		return false, fmt.Errorf("load overlay: %w", err)
	}
	if overlay == nil {
		return false, nil
	}
	if err := ovs.overlayRepo.Delete(ctx, nil, overlay); err != nil {
		ovs.log.Error("DeleteOverlay failed", "error", err, "overlay_id", overlayID)
		return false, fmt.Errorf("delete overlay: %w", err)
	}
	return true, nil
}
