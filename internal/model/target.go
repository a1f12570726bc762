package model

import "strings"

// Target identifies the (ingredient, location) pair being priced.
// Immutable input; constructed by the caller.
type Target struct {
	IngredientName string `json:"ingredient_name"`
	LocationName   string `json:"location_name"`
	LocationCode   string `json:"location_code"`
	LifecycleStage string `json:"lifecycle_stage,omitempty"`
	Year           int    `json:"year,omitempty"`
}

// Key returns the cache key for this target:
// lowercase(ingredientName)::locationCode.
func (t Target) Key() string {
	return strings.ToLower(strings.TrimSpace(t.IngredientName)) + "::" + strings.TrimSpace(t.LocationCode)
}
