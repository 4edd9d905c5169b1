package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

type RulesetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ruleset *types.Ruleset) (*types.Ruleset, error)
	GetByID(ctx context.Context, tx *gorm.DB, rulesetID uuid.UUID) (*types.Ruleset, error)
	GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.Ruleset, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Ruleset, error)
	UpdateSourceConfig(ctx context.Context, tx *gorm.DB, rulesetID uuid.UUID, sourceConfig datatypes.JSON) error
}

type rulesetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRulesetRepo(db *gorm.DB, baseLog *logger.Logger) RulesetRepo {
	repoLog := baseLog.With("repo", "RulesetRepo")
	return &rulesetRepo{db: db, log: repoLog}
}

func (rr *rulesetRepo) Create(ctx context.Context, tx *gorm.DB, ruleset *types.Ruleset) (*types.Ruleset, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if err := transaction.WithContext(ctx).Create(ruleset).Error; err != nil {
		return nil, err
	}
	return ruleset, nil
}

func (rr *rulesetRepo) GetByID(ctx context.Context, tx *gorm.DB, rulesetID uuid.UUID) (*types.Ruleset, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var result types.Ruleset
	err := transaction.WithContext(ctx).
		Where("id = ?", rulesetID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (rr *rulesetRepo) GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.Ruleset, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var result types.Ruleset
	err := transaction.WithContext(ctx).
		Where("key = ?", key).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (rr *rulesetRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Ruleset, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Ruleset
	if err := transaction.WithContext(ctx).
		Order("name").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *rulesetRepo) UpdateSourceConfig(ctx context.Context, tx *gorm.DB, rulesetID uuid.UUID, sourceConfig datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Ruleset{}).
		Where("id = ?", rulesetID).
		Update("source_config", sourceConfig).Error
}
