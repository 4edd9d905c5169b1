// Package merge implements the deep-merge primitive used by overlay
// resolution.
package merge

// Deep merges overlay into base, returning a new map. Overlay values
// take precedence. Nested maps are merged recursively; every other
// value, arrays included, replaces the base value wholesale. Neither
// input is mutated.
func Deep(base, overlay map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(overlay))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range overlay {
		baseVal, exists := result[key]
		baseMap, baseIsMap := baseVal.(map[string]interface{})
		overlayMap, overlayIsMap := value.(map[string]interface{})
		if exists && baseIsMap && overlayIsMap {
			result[key] = Deep(baseMap, overlayMap)
			continue
		}
		result[key] = value
	}
	return result
}
