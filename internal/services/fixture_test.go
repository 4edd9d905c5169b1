package services

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/grimoire-app/grimoire-backend/internal/logger"
	"github.com/grimoire-app/grimoire-backend/internal/repos"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

// Test tables mirror the postgres schema with sqlite-friendly types.
// Postgres-only column defaults (uuid_generate_v4) keep AutoMigrate
// from working here, so the fixture creates tables directly; every
// test row carries an explicit ID anyway.
const testSchema = `
CREATE TABLE "user" (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	username TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE "user_token" (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	access_token TEXT NOT NULL UNIQUE,
	refresh_token TEXT NOT NULL UNIQUE,
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE "ruleset" (
	id TEXT PRIMARY KEY,
	key TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	source_type TEXT NOT NULL,
	source_config TEXT,
	entity_types TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE "ruleset_entity" (
	id TEXT PRIMARY KEY,
	ruleset_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	source_key TEXT NOT NULL,
	name TEXT NOT NULL,
	document_key TEXT,
	entity_data TEXT NOT NULL,
	UNIQUE (ruleset_id, entity_type, source_key)
);
CREATE TABLE "campaign" (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	ruleset_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	settings TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE "character" (
	id TEXT PRIMARY KEY,
	campaign_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	character_type TEXT NOT NULL DEFAULT 'pc',
	level INTEGER NOT NULL DEFAULT 1,
	core_data TEXT,
	class_data TEXT,
	equipment TEXT,
	spells TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE "user_overlay" (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	ruleset_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	source_key TEXT NOT NULL,
	overlay_type TEXT NOT NULL,
	overlay_data TEXT,
	campaign_id TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, ruleset_id, entity_type, source_key, campaign_id)
);
`

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// A fresh connection would see an empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec(testSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type testEnv struct {
	db         *gorm.DB
	log        *logger.Logger
	rulesets   RulesetService
	overlays   OverlayService
	campaigns  CampaignService
	characters CharacterService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	log := testLogger(t)
	rulesetRepo := repos.NewRulesetRepo(db, log)
	entityRepo := repos.NewRulesetEntityRepo(db, log)
	overlayRepo := repos.NewOverlayRepo(db, log)
	campaignRepo := repos.NewCampaignRepo(db, log)
	characterRepo := repos.NewCharacterRepo(db, log)
	return &testEnv{
		db:         db,
		log:        log,
		rulesets:   NewRulesetService(db, log, rulesetRepo, entityRepo, overlayRepo),
		overlays:   NewOverlayService(db, log, overlayRepo, rulesetRepo, campaignRepo),
		campaigns:  NewCampaignService(db, log, campaignRepo, rulesetRepo),
		characters: NewCharacterService(db, log, characterRepo, campaignRepo),
	}
}

func (env *testEnv) seedUser(t *testing.T, email string) *types.User {
	t.Helper()
	user := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "hashed",
		Username: "tester",
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (env *testEnv) seedRuleset(t *testing.T, key string) *types.Ruleset {
	t.Helper()
	ruleset := &types.Ruleset{
		ID:         uuid.New(),
		Key:        key,
		Name:       "Test Ruleset",
		SourceType: "open5e",
	}
	if err := env.db.Create(ruleset).Error; err != nil {
		t.Fatalf("seed ruleset: %v", err)
	}
	return ruleset
}

func (env *testEnv) seedEntity(t *testing.T, rulesetID uuid.UUID, entityType, sourceKey, name string, documentKey string, data map[string]interface{}) *types.RulesetEntity {
	t.Helper()
	encoded, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("encode entity data: %v", err)
	}
	entity := &types.RulesetEntity{
		ID:         uuid.New(),
		RulesetID:  rulesetID,
		EntityType: entityType,
		SourceKey:  sourceKey,
		Name:       name,
		EntityData: datatypes.JSON(encoded),
	}
	if documentKey != "" {
		entity.DocumentKey = &documentKey
	}
	if err := env.db.Create(entity).Error; err != nil {
		t.Fatalf("seed entity %s: %v", sourceKey, err)
	}
	return entity
}

func (env *testEnv) seedCampaign(t *testing.T, userID, rulesetID uuid.UUID, name string) *types.Campaign {
	t.Helper()
	campaign := &types.Campaign{
		ID:        uuid.New(),
		UserID:    userID,
		RulesetID: rulesetID,
		Name:      name,
		Status:    types.CampaignStatusActive,
	}
	if err := env.db.Create(campaign).Error; err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	return campaign
}

func (env *testEnv) seedOverlay(t *testing.T, userID, rulesetID uuid.UUID, entityType, sourceKey, overlayType string, data map[string]interface{}, campaignID *uuid.UUID) *types.UserOverlay {
	t.Helper()
	encoded, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("encode overlay data: %v", err)
	}
	overlay := &types.UserOverlay{
		ID:          uuid.New(),
		UserID:      userID,
		RulesetID:   rulesetID,
		EntityType:  entityType,
		SourceKey:   sourceKey,
		OverlayType: overlayType,
		OverlayData: datatypes.JSON(encoded),
		CampaignID:  campaignID,
	}
	if err := env.db.Create(overlay).Error; err != nil {
		t.Fatalf("seed overlay: %v", err)
	}
	return overlay
}
