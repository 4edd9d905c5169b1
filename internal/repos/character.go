package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

type CharacterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, character *types.Character) (*types.Character, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, characterID, userID uuid.UUID) (*types.Character, error)
	ListByCampaignID(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID) ([]*types.Character, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Character, error)
	Save(ctx context.Context, tx *gorm.DB, character *types.Character) error
	Delete(ctx context.Context, tx *gorm.DB, character *types.Character) error
}

type characterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCharacterRepo(db *gorm.DB, baseLog *logger.Logger) CharacterRepo {
	repoLog := baseLog.With("repo", "CharacterRepo")
	return &characterRepo{db: db, log: repoLog}
}

func (cr *characterRepo) Create(ctx context.Context, tx *gorm.DB, character *types.Character) (*types.Character, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(character).Error; err != nil {
		return nil, err
	}
	return character, nil
}

func (cr *characterRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, characterID, userID uuid.UUID) (*types.Character, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.Character
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", characterID, userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *characterRepo) ListByCampaignID(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID) ([]*types.Character, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Character
	if err := transaction.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *characterRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Character, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Character
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *characterRepo) Save(ctx context.Context, tx *gorm.DB, character *types.Character) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Save(character).Error
}

func (cr *characterRepo) Delete(ctx context.Context, tx *gorm.DB, character *types.Character) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Delete(character).Error
}
