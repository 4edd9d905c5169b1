package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

// EntityFilter narrows entity listing queries. Zero values mean "no
// filter". DedupDocumentKey activates the smart-default shape: the
// named document plus entities from other documents whose lower-cased
// name is absent from it.
type EntityFilter struct {
	RulesetID        uuid.UUID
	EntityType       string
	Search           string
	DocumentKey      string
	DedupDocumentKey string
}

// DocumentCount is one group-by-count row over document_key.
type DocumentCount struct {
	DocumentKey string
	Count       int64
}

type RulesetEntityRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, rulesetID, entityID uuid.UUID) (*types.RulesetEntity, error)
	List(ctx context.Context, tx *gorm.DB, filter EntityFilter, offset, limit int) ([]*types.RulesetEntity, error)
	Count(ctx context.Context, tx *gorm.DB, filter EntityFilter) (int64, error)
	Upsert(ctx context.Context, tx *gorm.DB, entities []*types.RulesetEntity) error
	GroupByDocumentKey(ctx context.Context, tx *gorm.DB, rulesetID uuid.UUID) ([]DocumentCount, error)
	FirstByDocumentKey(ctx context.Context, tx *gorm.DB, rulesetID uuid.UUID, documentKey string) (*types.RulesetEntity, error)
}

type rulesetEntityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRulesetEntityRepo(db *gorm.DB, baseLog *logger.Logger) RulesetEntityRepo {
	repoLog := baseLog.With("repo", "RulesetEntityRepo")
	return &rulesetEntityRepo{db: db, log: repoLog}
}

func (er *rulesetEntityRepo) GetByID(ctx context.Context, tx *gorm.DB, rulesetID, entityID uuid.UUID) (*types.RulesetEntity, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var result types.RulesetEntity
	err := transaction.WithContext(ctx).
		Where("id = ? AND ruleset_id = ?", entityID, rulesetID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// applyFilter builds the shared WHERE clause for List and Count.
func (er *rulesetEntityRepo) applyFilter(query *gorm.DB, filter EntityFilter) *gorm.DB {
	query = query.Where("ruleset_id = ?", filter.RulesetID)
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.DocumentKey != "" {
		query = query.Where("document_key = ?", filter.DocumentKey)
	}
	if filter.DedupDocumentKey != "" {
		// The subquery must run on the same connection as the outer
		// query so it sees rows written inside an open transaction.
		sub := query.Session(&gorm.Session{NewDB: true}).
			Model(&types.RulesetEntity{}).
			Select("LOWER(name)").
			Where("ruleset_id = ? AND document_key = ?", filter.RulesetID, filter.DedupDocumentKey)
		if filter.EntityType != "" {
			sub = sub.Where("entity_type = ?", filter.EntityType)
		}
		query = query.Where(
			"(document_key = ? OR LOWER(name) NOT IN (?))",
			filter.DedupDocumentKey, sub,
		)
	}
	return query
}

func (er *rulesetEntityRepo) List(ctx context.Context, tx *gorm.DB, filter EntityFilter, offset, limit int) ([]*types.RulesetEntity, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []*types.RulesetEntity
	query := er.applyFilter(transaction.WithContext(ctx).Model(&types.RulesetEntity{}), filter)
	if err := query.
		Order("name").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *rulesetEntityRepo) Count(ctx context.Context, tx *gorm.DB, filter EntityFilter) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var count int64
	query := er.applyFilter(transaction.WithContext(ctx).Model(&types.RulesetEntity{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Upsert writes ingested entities, updating name, data and document
// key when the (ruleset, entity_type, source_key) row already exists.
func (er *rulesetEntityRepo) Upsert(ctx context.Context, tx *gorm.DB, entities []*types.RulesetEntity) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if len(entities) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "ruleset_id"},
				{Name: "entity_type"},
				{Name: "source_key"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"name", "entity_data", "document_key"}),
		}).
		Create(&entities).Error
}

func (er *rulesetEntityRepo) GroupByDocumentKey(ctx context.Context, tx *gorm.DB, rulesetID uuid.UUID) ([]DocumentCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var rows []DocumentCount
	if err := transaction.WithContext(ctx).
		Model(&types.RulesetEntity{}).
		Select("document_key, COUNT(*) as count").
		Where("ruleset_id = ? AND document_key IS NOT NULL", rulesetID).
		Group("document_key").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (er *rulesetEntityRepo) FirstByDocumentKey(ctx context.Context, tx *gorm.DB, rulesetID uuid.UUID, documentKey string) (*types.RulesetEntity, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var result types.RulesetEntity
	err := transaction.WithContext(ctx).
		Where("ruleset_id = ? AND document_key = ?", rulesetID, documentKey).
		Order("source_key").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
