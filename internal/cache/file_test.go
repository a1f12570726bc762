package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/costoracle/internal/model"
)

func sampleEstimate() *model.CostEstimate {
	return &model.CostEstimate{
		CostInUSD:      0.52,
		WeightUnit:     "kg",
		Justification:  "median of two commodity index prices",
		DerivationType: model.DerivationDirectLocal,
		GeoProximity:   model.ProximitySameCluster,
		Quality: model.QualityScores{
			Recency:     100,
			Source:      80,
			Estimation:  100,
			Consistency: 30,
			Proximity:   50,
			Composite:   79.5,
			Band:        model.BandMedium,
		},
	}
}

func TestFileCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.json")

	c, err := NewFile(path)
	require.NoError(t, err)

	_, ok, err := c.Get(context.Background(), "wheat flour::AU")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(context.Background(), "wheat flour::AU", sampleEstimate()))

	got, ok, err := c.Get(context.Background(), "wheat flour::AU")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.52, got.CostInUSD)
	assert.Equal(t, 79.5, got.Quality.Composite)
	assert.Equal(t, model.BandMedium, got.Quality.Band)

	// Reopen from disk: the entry must survive the process boundary.
	c2, err := NewFile(path)
	require.NoError(t, err)
	got2, ok, err := c2.Get(context.Background(), "wheat flour::AU")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, got.Quality, got2.Quality)
}

func TestFileCache_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	// Writes still work after degrading.
	require.NoError(t, c.Put(context.Background(), "rice::TH", sampleEstimate()))
	assert.Equal(t, 1, c.Len())
}

func TestFileCache_EmptyPath(t *testing.T) {
	_, err := NewFile("")
	require.Error(t, err)
}

func TestFileCache_GetReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.json")
	c, err := NewFile(path)
	require.NoError(t, err)

	require.NoError(t, c.Put(context.Background(), "salt::US", sampleEstimate()))

	first, ok, err := c.Get(context.Background(), "salt::US")
	require.NoError(t, err)
	require.True(t, ok)
	first.WeightUnit = "lb"

	second, ok, err := c.Get(context.Background(), "salt::US")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kg", second.WeightUnit)
}

func TestFileCache_WritesIndentedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimates.json")
	c, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, c.Put(context.Background(), "salt::US", sampleEstimate()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &entries))
	assert.Contains(t, entries, "salt::US")
}
