package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetKey(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{
			name:   "lowercases ingredient",
			target: Target{IngredientName: "Wheat Flour", LocationCode: "AU"},
			want:   "wheat flour::AU",
		},
		{
			name:   "trims whitespace",
			target: Target{IngredientName: "  palm oil ", LocationCode: " ID "},
			want:   "palm oil::ID",
		},
		{
			name:   "location code case preserved",
			target: Target{IngredientName: "sugar", LocationCode: "br"},
			want:   "sugar::br",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.target.Key())
		})
	}
}

func TestTargetKey_IdenticalForEquivalentTargets(t *testing.T) {
	a := Target{IngredientName: "Wheat Flour", LocationName: "Australia", LocationCode: "AU", Year: 2026}
	b := Target{IngredientName: "wheat flour", LocationCode: "AU"}
	assert.Equal(t, a.Key(), b.Key())
}
