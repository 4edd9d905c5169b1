package sources

import (
	"testing"
)

func sampleData(displayName, publisher, gamesystem string) map[string]interface{} {
	doc := map[string]interface{}{}
	if displayName != "" {
		doc["display_name"] = displayName
	}
	if publisher != "" {
		doc["publisher"] = map[string]interface{}{"name": publisher}
	}
	if gamesystem != "" {
		doc["gamesystem"] = map[string]interface{}{"key": gamesystem}
	}
	return map[string]interface{}{"document": doc}
}

func TestBuildOrderingAndRenumbering(t *testing.T) {
	groups := []Group{
		{Key: "tome-of-beasts", EntityCount: 400, SampleData: sampleData("Tome of Beasts", "Kobold Press", "o5e")},
		{Key: "srd-2014", EntityCount: 1200, SampleData: sampleData("5e SRD 2014", "Wizards of the Coast", "o5e")},
		{Key: "a5e-ag", EntityCount: 300, SampleData: sampleData("Adventurer's Guide", "EN Publishing", "a5e")},
		{Key: "srd-2024", EntityCount: 1300, SampleData: sampleData("5e SRD 2024", "Wizards of the Coast", "o5e")},
		{Key: "bfrd", EntityCount: 900, SampleData: sampleData("Black Flag RD", "Kobold Press", "bf")},
	}

	docs := Build(groups)

	wantOrder := []string{"srd-2024", "srd-2014", "bfrd", "a5e-ag", "tome-of-beasts"}
	if len(docs) != len(wantOrder) {
		t.Fatalf("got %d documents, want %d", len(docs), len(wantOrder))
	}
	for i, key := range wantOrder {
		if docs[i].Key != key {
			t.Fatalf("docs[%d].Key=%q, want %q", i, docs[i].Key, key)
		}
		if docs[i].Priority != i+1 {
			t.Fatalf("docs[%d].Priority=%d, want contiguous %d", i, docs[i].Priority, i+1)
		}
	}
}

func TestBuildDefaultIsMostCanonicalOfficial(t *testing.T) {
	docs := Build([]Group{
		{Key: "srd-2014", EntityCount: 1200},
		{Key: "srd-2024", EntityCount: 1300},
		{Key: "tome-of-beasts", EntityCount: 400},
	})

	defaults := 0
	for _, d := range docs {
		if d.IsDefault {
			defaults++
			if d.Key != "srd-2024" {
				t.Fatalf("default document is %q, want srd-2024", d.Key)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("got %d default documents, want exactly 1", defaults)
	}
}

func TestBuildNoDefaultWithoutCanonicalDocument(t *testing.T) {
	docs := Build([]Group{
		{Key: "srd-2014", EntityCount: 1200},
		{Key: "tome-of-beasts", EntityCount: 400},
	})
	if got := DefaultKey(docs); got != "" {
		t.Fatalf("DefaultKey=%q, want empty", got)
	}
}

func TestBuildDescriptorFallbacks(t *testing.T) {
	cases := []struct {
		name string
		data map[string]interface{}
		want Document
	}{
		{
			name: "nil_sample",
			data: nil,
			want: Document{DisplayName: "mystery-doc", Publisher: "Unknown", Gamesystem: ""},
		},
		{
			name: "no_document_descriptor",
			data: map[string]interface{}{"name": "Fireball"},
			want: Document{DisplayName: "mystery-doc", Publisher: "Unknown", Gamesystem: ""},
		},
		{
			name: "name_fallback_when_display_name_missing",
			data: map[string]interface{}{"document": map[string]interface{}{"name": "Mystery Tome"}},
			want: Document{DisplayName: "Mystery Tome", Publisher: "Unknown", Gamesystem: ""},
		},
		{
			name: "full_descriptor",
			data: sampleData("Mystery Tome", "Third Party Press", "o5e"),
			want: Document{DisplayName: "Mystery Tome", Publisher: "Third Party Press", Gamesystem: "o5e"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			docs := Build([]Group{{Key: "mystery-doc", EntityCount: 3, SampleData: tc.data}})
			if len(docs) != 1 {
				t.Fatalf("got %d documents, want 1", len(docs))
			}
			d := docs[0]
			if d.DisplayName != tc.want.DisplayName || d.Publisher != tc.want.Publisher || d.Gamesystem != tc.want.Gamesystem {
				t.Fatalf("descriptor=%+v, want %+v", d, tc.want)
			}
		})
	}
}

func TestBuildEmptyInput(t *testing.T) {
	docs := Build(nil)
	if len(docs) != 0 {
		t.Fatalf("got %d documents, want 0", len(docs))
	}
	if DefaultKey(docs) != "" {
		t.Fatalf("DefaultKey on empty list should be empty")
	}
}
