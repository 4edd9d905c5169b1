// Package sources derives the ranked source-document list for a
// ruleset from the document keys observed on its entities.
package sources

import (
	"sort"
)

// officialKeys is the ordered allow-list of official document keys.
// Position defines the priority tier; the first entry is the default
// document for new rulesets.
var officialKeys = []string{"srd-2024", "srd-2014", "bfrd"}

// provisionalPriority marks documents outside the official list before
// the final renumbering pass.
const provisionalPriority = 100

// Document describes one sourcebook observed in a ruleset's entity
// set. The list of Documents is derived data: it is rebuilt in full
// from entities on every ingestion run, never patched.
type Document struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Publisher   string `json:"publisher"`
	Gamesystem  string `json:"gamesystem"`
	Priority    int    `json:"priority"`
	IsDefault   bool   `json:"is_default"`
	EntityCount int64  `json:"entity_count"`
}

// Group is the raw input for one document: its key, how many entities
// carry it, and the decoded data blob of one representative entity.
type Group struct {
	Key         string
	EntityCount int64
	SampleData  map[string]interface{}
}

// Build computes the ranked document list for a set of groups.
// Official documents come first in tier order, everything else follows
// alphabetically by display name, and priorities are renumbered
// sequentially from 1 across the concatenated list.
func Build(groups []Group) []Document {
	docs := make([]Document, 0, len(groups))
	for _, g := range groups {
		doc := Document{
			Key:         g.Key,
			DisplayName: g.Key,
			Publisher:   "Unknown",
			Gamesystem:  "",
			Priority:    provisionalPriority,
			IsDefault:   g.Key == officialKeys[0],
			EntityCount: g.EntityCount,
		}
		fillDescriptor(&doc, g.SampleData)
		if rank := officialRank(g.Key); rank > 0 {
			doc.Priority = rank
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		iOfficial := docs[i].Priority < provisionalPriority
		jOfficial := docs[j].Priority < provisionalPriority
		if iOfficial != jOfficial {
			return iOfficial
		}
		if iOfficial {
			return docs[i].Priority < docs[j].Priority
		}
		return docs[i].DisplayName < docs[j].DisplayName
	})

	for i := range docs {
		docs[i].Priority = i + 1
	}
	return docs
}

// DefaultKey returns the key of the default document, or "" when none
// is marked default.
func DefaultKey(docs []Document) string {
	for _, d := range docs {
		if d.IsDefault {
			return d.Key
		}
	}
	return ""
}

func officialRank(key string) int {
	for i, k := range officialKeys {
		if k == key {
			return i + 1
		}
	}
	return 0
}

// fillDescriptor reads the nested "document" descriptor out of a
// representative entity blob. Missing fields keep their fallbacks.
func fillDescriptor(doc *Document, data map[string]interface{}) {
	if data == nil {
		return
	}
	nested, ok := data["document"].(map[string]interface{})
	if !ok {
		return
	}
	if name, ok := nested["display_name"].(string); ok && name != "" {
		doc.DisplayName = name
	} else if name, ok := nested["name"].(string); ok && name != "" {
		doc.DisplayName = name
	}
	if pub, ok := nested["publisher"].(map[string]interface{}); ok {
		if name, ok := pub["name"].(string); ok && name != "" {
			doc.Publisher = name
		}
	}
	if gs, ok := nested["gamesystem"].(map[string]interface{}); ok {
		if key, ok := gs["key"].(string); ok {
			doc.Gamesystem = key
		}
	}
}
