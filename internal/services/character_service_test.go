package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/grimoire-app/grimoire-backend/internal/types"
)

func TestCreateCharacterDefaults(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	campaign := env.seedCampaign(t, user.ID, ruleset.ID, "Curse of Tests")

	name := "Mirabel"
	character, err := env.characters.CreateCharacter(context.Background(), campaign.ID, user.ID, CharacterParams{
		Name:     &name,
		CoreData: json.RawMessage(`{"str": 14}`),
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	if character.CharacterType != types.CharacterTypePC {
		t.Errorf("character type = %s, want pc", character.CharacterType)
	}
	if character.Level != 1 {
		t.Errorf("level = %d, want 1", character.Level)
	}
	if string(character.Equipment) != "[]" {
		t.Errorf("equipment = %s, want empty array", character.Equipment)
	}
}

func TestCreateCharacterRequiresName(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	campaign := env.seedCampaign(t, user.ID, ruleset.ID, "Curse of Tests")

	_, err := env.characters.CreateCharacter(context.Background(), campaign.ID, user.ID, CharacterParams{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
}

func TestCreateCharacterUnknownCampaign(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")

	name := "Mirabel"
	_, err := env.characters.CreateCharacter(context.Background(), uuid.New(), user.ID, CharacterParams{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCharacterBlobShapes(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	campaign := env.seedCampaign(t, user.ID, ruleset.ID, "Curse of Tests")
	name := "Mirabel"

	for _, tc := range []struct {
		field  string
		params CharacterParams
	}{
		{"core_data", CharacterParams{Name: &name, CoreData: json.RawMessage(`[1, 2]`)}},
		{"class_data", CharacterParams{Name: &name, ClassData: json.RawMessage(`"wizard"`)}},
		{"equipment", CharacterParams{Name: &name, Equipment: json.RawMessage(`{"sword": 1}`)}},
		{"spells", CharacterParams{Name: &name, Spells: json.RawMessage(`{"fireball": true}`)}},
	} {
		t.Run(tc.field, func(t *testing.T) {
			_, err := env.characters.CreateCharacter(context.Background(), campaign.ID, user.ID, tc.params)
			var terr *TypeError
			if !errors.As(err, &terr) {
				t.Fatalf("got %v, want TypeError", err)
			}
			if terr.Field != tc.field {
				t.Errorf("field = %s, want %s", terr.Field, tc.field)
			}
		})
	}
}

func TestCharacterNullBlobs(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	campaign := env.seedCampaign(t, user.ID, ruleset.ID, "Curse of Tests")
	name := "Mirabel"

	character, err := env.characters.CreateCharacter(context.Background(), campaign.ID, user.ID, CharacterParams{
		Name:     &name,
		CoreData: json.RawMessage(`null`),
		Spells:   json.RawMessage(`null`),
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	if string(character.CoreData) != "{}" {
		t.Errorf("core_data = %s, want empty object", character.CoreData)
	}
	if string(character.Spells) != "[]" {
		t.Errorf("spells = %s, want empty array", character.Spells)
	}
}

func TestUpdateCharacter(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	campaign := env.seedCampaign(t, user.ID, ruleset.ID, "Curse of Tests")
	ctx := context.Background()

	name := "Mirabel"
	character, err := env.characters.CreateCharacter(ctx, campaign.ID, user.ID, CharacterParams{Name: &name})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	level := 5
	kind := types.CharacterTypeNPC
	updated, err := env.characters.UpdateCharacter(ctx, character.ID, user.ID, CharacterParams{
		Level:         &level,
		CharacterType: &kind,
		Spells:        json.RawMessage(`["fireball"]`),
	})
	if err != nil {
		t.Fatalf("update character: %v", err)
	}
	if updated.Level != 5 || updated.CharacterType != types.CharacterTypeNPC {
		t.Errorf("got level %d type %s, want 5/npc", updated.Level, updated.CharacterType)
	}
	if updated.Name != "Mirabel" {
		t.Errorf("name = %s, unchanged fields must survive", updated.Name)
	}
}

func TestCharacterForeignUser(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	intruder := env.seedUser(t, "intruder@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	campaign := env.seedCampaign(t, owner.ID, ruleset.ID, "Private Table")
	ctx := context.Background()

	name := "Mirabel"
	character, err := env.characters.CreateCharacter(ctx, campaign.ID, owner.ID, CharacterParams{Name: &name})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}

	got, err := env.characters.GetCharacter(ctx, character.ID, intruder.ID)
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if got != nil {
		t.Error("foreign user read someone else's character")
	}

	deleted, err := env.characters.DeleteCharacter(ctx, character.ID, intruder.ID)
	if err != nil {
		t.Fatalf("delete character: %v", err)
	}
	if deleted {
		t.Error("foreign user deleted someone else's character")
	}
}
