package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/merge"
	"github.com/grimoire-app/grimoire-backend/internal/repos"
	"github.com/grimoire-app/grimoire-backend/internal/sources"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

// SourceAll selects entities from every source document.
const SourceAll = "all"

// maxPerPage is the hard ceiling on page size.
const maxPerPage = 100

// defaultPerPage applies when the caller does not ask for a size.
const defaultPerPage = 50

// ListEntitiesParams carries the entity listing query. Source is one
// of: SourceAll, a concrete document key, or empty for the smart
// default (the ruleset's default document plus non-duplicate entities
// from the other documents).
type ListEntitiesParams struct {
	RulesetID  uuid.UUID
	EntityType string
	Search     string
	Source     string
	Page       int
	PerPage    int
}

// EntityPage is one page of a listing plus its pagination metadata and
// the source selection that was actually applied.
type EntityPage struct {
	Entities     []*types.RulesetEntity `json:"entities"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	Pages        int                    `json:"pages"`
	PerPage      int                    `json:"per_page"`
	ActiveSource string                 `json:"active_source"`
}

// EffectiveEntity is an entity as one user sees it: base data with the
// user's overlays folded in, plus the disabled and has-overlay flags.
type EffectiveEntity struct {
	ID          uuid.UUID              `json:"id"`
	RulesetID   uuid.UUID              `json:"ruleset_id"`
	EntityType  string                 `json:"entity_type"`
	SourceKey   string                 `json:"source_key"`
	Name        string                 `json:"name"`
	DocumentKey *string                `json:"document_key"`
	EntityData  map[string]interface{} `json:"entity_data"`
	IsDisabled  bool                   `json:"is_disabled"`
	HasOverlay  bool                   `json:"has_overlay"`
}

type RulesetService interface {
	ListRulesets(ctx context.Context) ([]*types.Ruleset, error)
	GetRuleset(ctx context.Context, rulesetID uuid.UUID) (*types.Ruleset, error)
	ListSources(ctx context.Context, rulesetID uuid.UUID) ([]sources.Document, error)
	ListEntities(ctx context.Context, params ListEntitiesParams) (*EntityPage, error)
	GetEntity(ctx context.Context, rulesetID, entityID uuid.UUID) (*types.RulesetEntity, error)
	GetEffectiveEntity(ctx context.Context, rulesetID, entityID, userID uuid.UUID, campaignID *uuid.UUID) (*EffectiveEntity, error)
	ApplyOverlays(ctx context.Context, entity *types.RulesetEntity, userID uuid.UUID, campaignID *uuid.UUID) (*EffectiveEntity, error)
	RebuildSourceConfig(ctx context.Context, rulesetID uuid.UUID) ([]sources.Document, error)
}

type rulesetService struct {
	db          *gorm.DB
	log         *logger.Logger
	rulesetRepo repos.RulesetRepo
	entityRepo  repos.RulesetEntityRepo
	overlayRepo repos.OverlayRepo
}

func NewRulesetService(
	db *gorm.DB,
	baseLog *logger.Logger,
	rulesetRepo repos.RulesetRepo,
	entityRepo repos.RulesetEntityRepo,
	overlayRepo repos.OverlayRepo,
) RulesetService {
	serviceLog := baseLog.With("service", "RulesetService")
	return &rulesetService{
		db:          db,
		log:         serviceLog,
		rulesetRepo: rulesetRepo,
		entityRepo:  entityRepo,
		overlayRepo: overlayRepo,
	}
}

func (rs *rulesetService) ListRulesets(ctx context.Context) ([]*types.Ruleset, error) {
	return rs.rulesetRepo.List(ctx, nil)
}

func (rs *rulesetService) GetRuleset(ctx context.Context, rulesetID uuid.UUID) (*types.Ruleset, error) {
	return rs.rulesetRepo.GetByID(ctx, nil, rulesetID)
}

// ListSources returns the ruleset's derived source-document list, or
// nil when the ruleset does not exist.
func (rs *rulesetService) ListSources(ctx context.Context, rulesetID uuid.UUID) ([]sources.Document, error) {
	ruleset, err := rs.rulesetRepo.GetByID(ctx, nil, rulesetID)
	if err != nil {
		return nil, fmt.Errorf("load ruleset: %w", err)
	}
	if ruleset == nil {
		return nil, nil
	}
	docs, err := decodeSources(ruleset.SourceConfig)
	if err != nil {
		return nil, fmt.Errorf("decode source config: %w", err)
	}
	if docs == nil {
		docs = []sources.Document{}
	}
	return docs, nil
}

func (rs *rulesetService) ListEntities(ctx context.Context, params ListEntitiesParams) (*EntityPage, error) {
	ruleset, err := rs.rulesetRepo.GetByID(ctx, nil, params.RulesetID)
	if err != nil {
		return nil, fmt.Errorf("load ruleset: %w", err)
	}
	if ruleset == nil {
		return nil, nil
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	filter := repos.EntityFilter{
		RulesetID:  params.RulesetID,
		EntityType: params.EntityType,
		Search:     params.Search,
	}
	activeSource := params.Source
	switch params.Source {
	case SourceAll:
		// no source restriction
	case "":
		docs, err := decodeSources(ruleset.SourceConfig)
		if err != nil {
			return nil, fmt.Errorf("decode source config: %w", err)
		}
		if defaultKey := sources.DefaultKey(docs); defaultKey != "" {
			filter.DedupDocumentKey = defaultKey
			activeSource = defaultKey
		} else {
			activeSource = SourceAll
		}
	default:
		filter.DocumentKey = params.Source
	}

	total, err := rs.entityRepo.Count(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}
	entities, err := rs.entityRepo.List(ctx, nil, filter, (page-1)*perPage, perPage)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	// Listings carry display fields only; the data blob is fetched per
	// entity.
	for _, e := range entities {
		e.EntityData = nil
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return &EntityPage{
		Entities:     entities,
		Total:        total,
		Page:         page,
		Pages:        pages,
		PerPage:      perPage,
		ActiveSource: activeSource,
	}, nil
}

func (rs *rulesetService) GetEntity(ctx context.Context, rulesetID, entityID uuid.UUID) (*types.RulesetEntity, error) {
	return rs.entityRepo.GetByID(ctx, nil, rulesetID, entityID)
}

func (rs *rulesetService) GetEffectiveEntity(ctx context.Context, rulesetID, entityID, userID uuid.UUID, campaignID *uuid.UUID) (*EffectiveEntity, error) {
	entity, err := rs.entityRepo.GetByID(ctx, nil, rulesetID, entityID)
	if err != nil {
		return nil, fmt.Errorf("load entity: %w", err)
	}
	if entity == nil {
		return nil, nil
	}
	return rs.ApplyOverlays(ctx, entity, userID, campaignID)
}

// ApplyOverlays computes the effective view of an entity for one user
// and optional campaign scope. Global overlays apply before the
// campaign-scoped one, so campaign customization wins on conflicting
// keys. A disable overlay flags the entity without stopping later
// merges.
func (rs *rulesetService) ApplyOverlays(ctx context.Context, entity *types.RulesetEntity, userID uuid.UUID, campaignID *uuid.UUID) (*EffectiveEntity, error) {
	overlays, err := rs.overlayRepo.FindForEntity(ctx, nil, userID, entity, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load overlays: %w", err)
	}

	effectiveData, err := decodeData(entity.EntityData)
	if err != nil {
		return nil, fmt.Errorf("decode entity data: %w", err)
	}
	isDisabled := false

	for _, overlay := range overlays {
		switch overlay.OverlayType {
		case types.OverlayTypeDisable:
			isDisabled = true
		case types.OverlayTypeModify, types.OverlayTypeHomebrew:
			overlayData, err := decodeData(overlay.OverlayData)
			if err != nil {
				return nil, fmt.Errorf("decode overlay data: %w", err)
			}
			effectiveData = merge.Deep(effectiveData, overlayData)
		}
	}

	return &EffectiveEntity{
		ID:          entity.ID,
		RulesetID:   entity.RulesetID,
		EntityType:  entity.EntityType,
		SourceKey:   entity.SourceKey,
		Name:        entity.Name,
		DocumentKey: entity.DocumentKey,
		EntityData:  effectiveData,
		IsDisabled:  isDisabled,
		HasOverlay:  len(overlays) > 0,
	}, nil
}

// RebuildSourceConfig recomputes the ruleset's source-document list
// from the entities currently on disk and overwrites the stored list
// in full. Runs after ingestion; idempotent for unchanged entity data.
func (rs *rulesetService) RebuildSourceConfig(ctx context.Context, rulesetID uuid.UUID) ([]sources.Document, error) {
	ruleset, err := rs.rulesetRepo.GetByID(ctx, nil, rulesetID)
	if err != nil {
		return nil, fmt.Errorf("load ruleset: %w", err)
	}
	if ruleset == nil {
		return nil, nil
	}

	counts, err := rs.entityRepo.GroupByDocumentKey(ctx, nil, rulesetID)
	if err != nil {
		return nil, fmt.Errorf("group entities by document: %w", err)
	}

	groups := make([]sources.Group, 0, len(counts))
	for _, row := range counts {
		group := sources.Group{Key: row.DocumentKey, EntityCount: row.Count}
		sample, err := rs.entityRepo.FirstByDocumentKey(ctx, nil, rulesetID, row.DocumentKey)
		if err != nil {
			return nil, fmt.Errorf("load sample entity: %w", err)
		}
		if sample != nil {
			data, err := decodeData(sample.EntityData)
			if err != nil {
				return nil, fmt.Errorf("decode sample entity data: %w", err)
			}
			group.SampleData = data
		}
		groups = append(groups, group)
	}

	docs := sources.Build(groups)

	config := map[string]interface{}{}
	if len(ruleset.SourceConfig) > 0 {
		if err := json.Unmarshal(ruleset.SourceConfig, &config); err != nil {
			return nil, fmt.Errorf("decode source config: %w", err)
		}
	}
	config["sources"] = docs
	encoded, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("encode source config: %w", err)
	}
	if err := rs.rulesetRepo.UpdateSourceConfig(ctx, nil, rulesetID, datatypes.JSON(encoded)); err != nil {
		return nil, fmt.Errorf("store source config: %w", err)
	}

	rs.log.Info("Rebuilt source metadata", "ruleset_id", rulesetID, "sources", len(docs))
	return docs, nil
}

func decodeData(raw datatypes.JSON) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return data, nil
}

func decodeSources(raw datatypes.JSON) ([]sources.Document, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var config struct {
		Sources []sources.Document `json:"sources"`
	}
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, err
	}
	return config.Sources, nil
}
