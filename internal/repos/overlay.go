package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

// OverlayFilter narrows ListForUser. Zero values mean "no filter".
type OverlayFilter struct {
	RulesetID  uuid.UUID
	CampaignID uuid.UUID
	EntityType string
}

type OverlayRepo interface {
	GetByIDForUser(ctx context.Context, tx *gorm.DB, overlayID, userID uuid.UUID) (*types.UserOverlay, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter OverlayFilter) ([]*types.UserOverlay, error)
	FindForEntity(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entity *types.RulesetEntity, campaignID *uuid.UUID) ([]*types.UserOverlay, error)
	UpsertScoped(ctx context.Context, tx *gorm.DB, overlay *types.UserOverlay) (*types.UserOverlay, error)
	Save(ctx context.Context, tx *gorm.DB, overlay *types.UserOverlay) error
	Delete(ctx context.Context, tx *gorm.DB, overlay *types.UserOverlay) error
}

type overlayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOverlayRepo(db *gorm.DB, baseLog *logger.Logger) OverlayRepo {
	repoLog := baseLog.With("repo", "OverlayRepo")
	return &overlayRepo{db: db, log: repoLog}
}

func (or *overlayRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, overlayID, userID uuid.UUID) (*types.UserOverlay, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var result types.UserOverlay
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", overlayID, userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (or *overlayRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter OverlayFilter) ([]*types.UserOverlay, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	query := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if filter.RulesetID != uuid.Nil {
		query = query.Where("ruleset_id = ?", filter.RulesetID)
	}
	if filter.CampaignID != uuid.Nil {
		query = query.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	var results []*types.UserOverlay
	if err := query.Order("created_at").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindForEntity loads the overlays relevant to one entity for one
// user: the global slot plus, when campaignID is set, that campaign's
// slot. Global rows sort first so campaign customization layers on
// top.
func (or *overlayRepo) FindForEntity(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entity *types.RulesetEntity, campaignID *uuid.UUID) ([]*types.UserOverlay, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	query := transaction.WithContext(ctx).
		Where("user_id = ? AND ruleset_id = ? AND entity_type = ? AND source_key = ?",
			userID, entity.RulesetID, entity.EntityType, entity.SourceKey)
	if campaignID != nil {
		query = query.Where("(campaign_id IS NULL OR campaign_id = ?)", *campaignID)
	} else {
		query = query.Where("campaign_id IS NULL")
	}
	var results []*types.UserOverlay
	if err := query.
		Order("CASE WHEN campaign_id IS NULL THEN 0 ELSE 1 END").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpsertScoped writes an overlay into its (user, ruleset, entity_type,
// source_key, campaign) slot. An existing row in the slot is updated
// in place; the slot can never hold two rows.
func (or *overlayRepo) UpsertScoped(ctx context.Context, tx *gorm.DB, overlay *types.UserOverlay) (*types.UserOverlay, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		query := inner.
			Where("user_id = ? AND ruleset_id = ? AND entity_type = ? AND source_key = ?",
				overlay.UserID, overlay.RulesetID, overlay.EntityType, overlay.SourceKey)
		if overlay.CampaignID != nil {
			query = query.Where("campaign_id = ?", *overlay.CampaignID)
		} else {
			query = query.Where("campaign_id IS NULL")
		}
		var existing types.UserOverlay
		findErr := query.First(&existing).Error
		if findErr == nil {
			existing.OverlayType = overlay.OverlayType
			existing.OverlayData = overlay.OverlayData
			if err := inner.Save(&existing).Error; err != nil {
				return err
			}
			*overlay = existing
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		return inner.Create(overlay).Error
	})
	if err != nil {
		return nil, err
	}
	return overlay, nil
}

func (or *overlayRepo) Save(ctx context.Context, tx *gorm.DB, overlay *types.UserOverlay) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Save(overlay).Error
}

func (or *overlayRepo) Delete(ctx context.Context, tx *gorm.DB, overlay *types.UserOverlay) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Delete(overlay).Error
}
