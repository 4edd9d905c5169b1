package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/grimoire-app/grimoire-backend/internal/repos"
	"github.com/grimoire-app/grimoire-backend/internal/types"
)

func TestCreateOverlayMissingFields(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")

	_, err := env.overlays.CreateOverlay(context.Background(), user.ID, CreateOverlayParams{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	want := []string{"ruleset_id", "entity_type", "source_key", "overlay_type", "overlay_data"}
	if len(verr.Missing) != len(want) {
		t.Fatalf("missing = %v, want %v", verr.Missing, want)
	}
	for i, field := range want {
		if verr.Missing[i] != field {
			t.Errorf("missing[%d] = %s, want %s", i, verr.Missing[i], field)
		}
	}
}

func TestCreateOverlayEmptyDataAllowed(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")

	// A disable overlay carries no data; an empty object is still a
	// supplied value, only a missing field is rejected.
	overlay, err := env.overlays.CreateOverlay(context.Background(), user.ID, CreateOverlayParams{
		RulesetID:   ruleset.ID,
		EntityType:  "spell",
		SourceKey:   "fireball",
		OverlayType: types.OverlayTypeDisable,
		OverlayData: map[string]interface{}{},
	})
	if err != nil {
		t.Fatalf("create overlay: %v", err)
	}
	if overlay.OverlayType != types.OverlayTypeDisable {
		t.Errorf("overlay type = %s, want disable", overlay.OverlayType)
	}
}

func TestCreateOverlayInvalidType(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")

	_, err := env.overlays.CreateOverlay(context.Background(), user.ID, CreateOverlayParams{
		RulesetID:   ruleset.ID,
		EntityType:  "spell",
		SourceKey:   "fireball",
		OverlayType: "delete",
		OverlayData: map[string]interface{}{},
	})
	if err == nil {
		t.Fatal("invalid overlay_type accepted")
	}
}

func TestCreateOverlayUnknownRuleset(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")

	_, err := env.overlays.CreateOverlay(context.Background(), user.ID, CreateOverlayParams{
		RulesetID:   uuid.New(),
		EntityType:  "spell",
		SourceKey:   "fireball",
		OverlayType: types.OverlayTypeModify,
		OverlayData: map[string]interface{}{"damage": "10d6"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCreateOverlayForeignCampaignRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	intruder := env.seedUser(t, "intruder@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	campaign := env.seedCampaign(t, owner.ID, ruleset.ID, "Private Table")

	_, err := env.overlays.CreateOverlay(context.Background(), intruder.ID, CreateOverlayParams{
		RulesetID:   ruleset.ID,
		EntityType:  "spell",
		SourceKey:   "fireball",
		OverlayType: types.OverlayTypeModify,
		OverlayData: map[string]interface{}{"damage": "10d6"},
		CampaignID:  &campaign.ID,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound for foreign campaign", err)
	}
}

func TestCreateOverlaySlotUpsert(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	campaign := env.seedCampaign(t, user.ID, ruleset.ID, "Curse of Tests")
	ctx := context.Background()

	params := CreateOverlayParams{
		RulesetID:   ruleset.ID,
		EntityType:  "spell",
		SourceKey:   "fireball",
		OverlayType: types.OverlayTypeModify,
		OverlayData: map[string]interface{}{"damage": "10d6"},
	}
	first, err := env.overlays.CreateOverlay(ctx, user.ID, params)
	if err != nil {
		t.Fatalf("create overlay: %v", err)
	}

	// Same slot again replaces the row instead of stacking a second.
	params.OverlayData = map[string]interface{}{"damage": "12d6"}
	second, err := env.overlays.CreateOverlay(ctx, user.ID, params)
	if err != nil {
		t.Fatalf("recreate overlay: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("slot produced a new row %s, want reuse of %s", second.ID, first.ID)
	}

	// A campaign scope is its own slot.
	params.CampaignID = &campaign.ID
	scoped, err := env.overlays.CreateOverlay(ctx, user.ID, params)
	if err != nil {
		t.Fatalf("create scoped overlay: %v", err)
	}
	if scoped.ID == first.ID {
		t.Error("campaign slot collided with the global slot")
	}

	overlays, err := env.overlays.ListOverlays(ctx, user.ID, repos.OverlayFilter{RulesetID: ruleset.ID})
	if err != nil {
		t.Fatalf("list overlays: %v", err)
	}
	if len(overlays) != 2 {
		t.Errorf("got %d overlays, want 2 (one per slot)", len(overlays))
	}
}

func TestUpdateOverlayForeignUser(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com")
	intruder := env.seedUser(t, "intruder@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	overlay := env.seedOverlay(t, owner.ID, ruleset.ID, "spell", "fireball",
		types.OverlayTypeModify, map[string]interface{}{"damage": "10d6"}, nil)

	kind := types.OverlayTypeDisable
	updated, err := env.overlays.UpdateOverlay(context.Background(), overlay.ID, intruder.ID, UpdateOverlayParams{
		OverlayType: &kind,
	})
	if err != nil {
		t.Fatalf("update overlay: %v", err)
	}
	if updated != nil {
		t.Error("foreign user updated someone else's overlay")
	}
}

func TestDeleteOverlay(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "gm@example.com")
	ruleset := env.seedRuleset(t, "dnd-5e-srd")
	overlay := env.seedOverlay(t, user.ID, ruleset.ID, "spell", "fireball",
		types.OverlayTypeModify, map[string]interface{}{"damage": "10d6"}, nil)
	ctx := context.Background()

	deleted, err := env.overlays.DeleteOverlay(ctx, overlay.ID, user.ID)
	if err != nil {
		t.Fatalf("delete overlay: %v", err)
	}
	if !deleted {
		t.Fatal("delete reported false for an owned overlay")
	}

	deleted, err = env.overlays.DeleteOverlay(ctx, overlay.ID, user.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Error("second delete reported true")
	}
}
