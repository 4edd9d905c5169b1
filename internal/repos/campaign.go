package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

type CampaignRepo interface {
	Create(ctx context.Context, tx *gorm.DB, campaign *types.Campaign) (*types.Campaign, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, campaignID, userID uuid.UUID) (*types.Campaign, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Campaign, error)
	Save(ctx context.Context, tx *gorm.DB, campaign *types.Campaign) error
	Delete(ctx context.Context, tx *gorm.DB, campaign *types.Campaign) error
	CountCharacters(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID) (int64, error)
}

type campaignRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCampaignRepo(db *gorm.DB, baseLog *logger.Logger) CampaignRepo {
	repoLog := baseLog.With("repo", "CampaignRepo")
	return &campaignRepo{db: db, log: repoLog}
}

func (cr *campaignRepo) Create(ctx context.Context, tx *gorm.DB, campaign *types.Campaign) (*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

func (cr *campaignRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, campaignID, userID uuid.UUID) (*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.Campaign
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", campaignID, userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *campaignRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Campaign
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *campaignRepo) Save(ctx context.Context, tx *gorm.DB, campaign *types.Campaign) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Save(campaign).Error
}

// Delete removes the campaign plus its characters and campaign-scoped
// overlays. The FK constraints cascade the same way in Postgres; the
// explicit deletes keep sqlite test databases honest too.
func (cr *campaignRepo) Delete(ctx context.Context, tx *gorm.DB, campaign *types.Campaign) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.Where("campaign_id = ?", campaign.ID).Delete(&types.Character{}).Error; err != nil {
			return err
		}
		if err := inner.Where("campaign_id = ?", campaign.ID).Delete(&types.UserOverlay{}).Error; err != nil {
			return err
		}
		return inner.Delete(campaign).Error
	})
}

func (cr *campaignRepo) CountCharacters(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Character{}).
		Where("campaign_id = ?", campaignID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
