package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/grimoire-app/grimoire-backend/internal/db"
	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/repos"
	"github.com/grimoire-app/grimoire-backend/internal/services"
	"github.com/grimoire-app/grimoire-backend/internal/types"
	"github.com/grimoire-app/grimoire-backend/internal/utils"
)

const (
	rulesetKey  = "dnd-5e-srd"
	rulesetName = "D&D 5e SRD"
	pageLimit   = 100
)

type entityConfig struct {
	Type     string
	Endpoint string
}

var entityConfigs = []entityConfig{
	{Type: "spell", Endpoint: "/spells"},
	{Type: "creature", Endpoint: "/creatures"},
	{Type: "class", Endpoint: "/classes"},
	{Type: "species", Endpoint: "/species"},
	{Type: "item", Endpoint: "/items"},
	{Type: "feat", Endpoint: "/feats"},
	{Type: "condition", Endpoint: "/conditions"},
	{Type: "background", Endpoint: "/backgrounds"},
}

type listPage struct {
	Next    *string           `json:"next"`
	Results []json.RawMessage `json:"results"`
}

type upstreamItem struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Name     string `json:"name"`
	Document *struct {
		Key string `json:"key"`
	} `json:"document"`
}

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	baseURL := utils.GetEnv("OPEN5E_BASE_URL", "https://api.open5e.com/v2", log)

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	rulesetRepo := repos.NewRulesetRepo(thePG, log)
	entityRepo := repos.NewRulesetEntityRepo(thePG, log)
	overlayRepo := repos.NewOverlayRepo(thePG, log)
	rulesetService := services.NewRulesetService(thePG, log, rulesetRepo, entityRepo, overlayRepo)

	ctx := context.Background()

	ruleset, err := rulesetRepo.GetByKey(ctx, nil, rulesetKey)
	if err != nil {
		log.Fatal("Load ruleset failed", "error", err)
	}
	if ruleset == nil {
		entityTypes := make([]string, 0, len(entityConfigs))
		for _, cfg := range entityConfigs {
			entityTypes = append(entityTypes, cfg.Type)
		}
		typesJSON, _ := json.Marshal(entityTypes)
		configJSON, _ := json.Marshal(map[string]interface{}{"base_url": baseURL})
		ruleset, err = rulesetRepo.Create(ctx, nil, &types.Ruleset{
			ID:           uuid.New(),
			Key:          rulesetKey,
			Name:         rulesetName,
			SourceType:   "open5e",
			SourceConfig: datatypes.JSON(configJSON),
			EntityTypes:  datatypes.JSON(typesJSON),
		})
		if err != nil {
			log.Fatal("Create ruleset failed", "error", err)
		}
		log.Info("Created ruleset", "key", rulesetKey)
	} else {
		log.Info("Ruleset exists, updating entities", "key", rulesetKey)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	var mu sync.Mutex
	total := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, cfg := range entityConfigs {
		cfg := cfg
		g.Go(func() error {
			items, err := fetchAllPages(gctx, client, log, baseURL, cfg.Endpoint)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", cfg.Type, err)
			}
			entities := make([]*types.RulesetEntity, 0, len(items))
			for _, raw := range items {
				entity, ok := buildEntity(ruleset.ID, cfg.Type, raw)
				if !ok {
					continue
				}
				entities = append(entities, entity)
			}
			if err := entityRepo.Upsert(gctx, nil, entities); err != nil {
				return fmt.Errorf("upsert %s: %w", cfg.Type, err)
			}
			log.Info("Seeded entity type", "entity_type", cfg.Type, "count", len(entities))
			mu.Lock()
			total += len(entities)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}

	docs, err := rulesetService.RebuildSourceConfig(ctx, ruleset.ID)
	if err != nil {
		log.Fatal("Rebuild source config failed", "error", err)
	}
	log.Info("Seeding done", "entities", total, "sources", len(docs))
}

func fetchAllPages(ctx context.Context, client *http.Client, log *logger.Logger, baseURL, endpoint string) ([]json.RawMessage, error) {
	var results []json.RawMessage
	url := fmt.Sprintf("%s%s?format=json&limit=%d", baseURL, endpoint, pageLimit)

	for url != "" {
		log.Debug("Fetching page", "url", url)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
		}

		var page listPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode %s: %w", url, err)
		}
		results = append(results, page.Results...)

		url = ""
		if page.Next != nil {
			url = *page.Next
		}
	}
	return results, nil
}

// buildEntity maps one upstream record to a RulesetEntity. The source
// key falls back from "key" to "url" to the name, matching what the
// upstream API exposes per endpoint.
func buildEntity(rulesetID uuid.UUID, entityType string, raw json.RawMessage) (*types.RulesetEntity, bool) {
	var item upstreamItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, false
	}
	name := item.Name
	if name == "" {
		name = "Unknown"
	}
	sourceKey := item.Key
	if sourceKey == "" {
		sourceKey = item.URL
	}
	if sourceKey == "" {
		sourceKey = name
	}
	var documentKey *string
	if item.Document != nil && item.Document.Key != "" {
		key := item.Document.Key
		documentKey = &key
	}
	return &types.RulesetEntity{
		ID:          uuid.New(),
		RulesetID:   rulesetID,
		EntityType:  entityType,
		SourceKey:   sourceKey,
		Name:        name,
		DocumentKey: documentKey,
		EntityData:  datatypes.JSON(raw),
	}, true
}
