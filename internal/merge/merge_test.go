package merge

import (
	"reflect"
	"testing"
)

func TestDeep(t *testing.T) {
	cases := []struct {
		name    string
		base    map[string]interface{}
		overlay map[string]interface{}
		want    map[string]interface{}
	}{
		{
			name:    "overlay_wins_on_scalar",
			base:    map[string]interface{}{"dc": 13},
			overlay: map[string]interface{}{"dc": 15},
			want:    map[string]interface{}{"dc": 15},
		},
		{
			name:    "base_keys_preserved",
			base:    map[string]interface{}{"hp": 10, "ac": map[string]interface{}{"base": 15}},
			overlay: map[string]interface{}{"ac": map[string]interface{}{"base": 16}},
			want:    map[string]interface{}{"hp": 10, "ac": map[string]interface{}{"base": 16}},
		},
		{
			name: "nested_maps_merge_recursively",
			base: map[string]interface{}{
				"stats": map[string]interface{}{"str": 10, "dex": 12},
			},
			overlay: map[string]interface{}{
				"stats": map[string]interface{}{"dex": 14},
			},
			want: map[string]interface{}{
				"stats": map[string]interface{}{"str": 10, "dex": 14},
			},
		},
		{
			name:    "arrays_replace_wholesale",
			base:    map[string]interface{}{"tags": []interface{}{"fire", "evocation"}},
			overlay: map[string]interface{}{"tags": []interface{}{"ice"}},
			want:    map[string]interface{}{"tags": []interface{}{"ice"}},
		},
		{
			name:    "map_replaces_scalar",
			base:    map[string]interface{}{"range": "60 feet"},
			overlay: map[string]interface{}{"range": map[string]interface{}{"distance": 60, "unit": "feet"}},
			want:    map[string]interface{}{"range": map[string]interface{}{"distance": 60, "unit": "feet"}},
		},
		{
			name:    "overlay_only_keys_added",
			base:    map[string]interface{}{"name": "Fireball"},
			overlay: map[string]interface{}{"notes": "house rule"},
			want:    map[string]interface{}{"name": "Fireball", "notes": "house rule"},
		},
		{
			name:    "empty_overlay_is_identity",
			base:    map[string]interface{}{"hp": 10},
			overlay: map[string]interface{}{},
			want:    map[string]interface{}{"hp": 10},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Deep(tc.base, tc.overlay)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Deep(%v, %v)=%v, want %v", tc.base, tc.overlay, got, tc.want)
			}
		})
	}
}

func TestDeepDoesNotMutateInputs(t *testing.T) {
	base := map[string]interface{}{
		"ac": map[string]interface{}{"base": 15},
	}
	overlay := map[string]interface{}{
		"ac": map[string]interface{}{"base": 16},
	}

	_ = Deep(base, overlay)

	if got := base["ac"].(map[string]interface{})["base"]; got != 15 {
		t.Fatalf("base mutated: ac.base=%v, want 15", got)
	}
	if got := overlay["ac"].(map[string]interface{})["base"]; got != 16 {
		t.Fatalf("overlay mutated: ac.base=%v, want 16", got)
	}
}

func TestDeepSequentialEqualsPreCombined(t *testing.T) {
	base := map[string]interface{}{"hp": 10, "dc": 11}
	first := map[string]interface{}{"dc": 13, "school": "evocation"}
	second := map[string]interface{}{"dc": 15}

	sequential := Deep(Deep(base, first), second)
	combined := Deep(base, Deep(first, second))

	if !reflect.DeepEqual(sequential, combined) {
		t.Fatalf("sequential=%v, combined=%v", sequential, combined)
	}
	if sequential["dc"] != 15 {
		t.Fatalf("later overlay should win: dc=%v, want 15", sequential["dc"])
	}
}
