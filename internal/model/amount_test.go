package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostAmount_SingleValue(t *testing.T) {
	a := SingleAmount(0.52)
	assert.False(t, a.IsRange())
	assert.Equal(t, 0.52, a.Value())
	lo, hi := a.Bounds()
	assert.Equal(t, 0.52, lo)
	assert.Equal(t, 0.52, hi)
	assert.True(t, a.Positive())
}

func TestCostAmount_RangeMidpoint(t *testing.T) {
	a := RangeAmount(0.40, 0.60)
	assert.True(t, a.IsRange())
	assert.Equal(t, 0.50, a.Value())
	lo, hi := a.Bounds()
	assert.Equal(t, 0.40, lo)
	assert.Equal(t, 0.60, hi)
}

func TestCostAmount_Positive(t *testing.T) {
	assert.False(t, SingleAmount(0).Positive())
	assert.False(t, SingleAmount(-1).Positive())
	assert.False(t, RangeAmount(-2, 0).Positive())
	assert.True(t, RangeAmount(0, 0.5).Positive())
	assert.True(t, RangeAmount(0.1, 0.5).Positive())
}

func TestCostAmount_MarshalSingle(t *testing.T) {
	a := SingleAmount(0.52)
	a.Currency = "USD"
	a.WeightUnit = "kg"
	a.ConfidenceScore = 0.9
	a.Source = CostSource{URL: "https://example.com"}

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 0.52, got["amount"])
	assert.NotContains(t, got, "min_amount")
	assert.NotContains(t, got, "max_amount")
}

func TestCostAmount_MarshalRange(t *testing.T) {
	a := RangeAmount(0.40, 0.60)
	a.Currency = "USD"

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.NotContains(t, got, "amount")
	assert.Equal(t, 0.40, got["min_amount"])
	assert.Equal(t, 0.60, got["max_amount"])
}

func TestCostAmount_MarshalZeroValueRejected(t *testing.T) {
	var a CostAmount
	_, err := json.Marshal(a)
	require.Error(t, err)
}

func TestCostAmount_UnmarshalSingle(t *testing.T) {
	var a CostAmount
	require.NoError(t, json.Unmarshal([]byte(`{
		"amount": 0.52, "currency": "USD", "weight_unit": "kg",
		"confidence_score": 0.9, "source": {"url": "https://example.com"}
	}`), &a))
	assert.False(t, a.IsRange())
	assert.Equal(t, 0.52, a.Value())
	assert.Equal(t, "USD", a.Currency)
	assert.Equal(t, 0.9, a.ConfidenceScore)
	assert.Equal(t, "https://example.com", a.Source.URL)
}

func TestCostAmount_UnmarshalRange(t *testing.T) {
	var a CostAmount
	require.NoError(t, json.Unmarshal([]byte(`{
		"min_amount": 0.40, "max_amount": 0.60, "currency": "USD"
	}`), &a))
	assert.True(t, a.IsRange())
	assert.Equal(t, 0.50, a.Value())
}

func TestCostAmount_UnmarshalBothRejected(t *testing.T) {
	var a CostAmount
	err := json.Unmarshal([]byte(`{"amount": 1, "min_amount": 0.4, "max_amount": 0.6}`), &a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both")
}

func TestCostAmount_UnmarshalNeitherRejected(t *testing.T) {
	var a CostAmount
	err := json.Unmarshal([]byte(`{"currency": "USD"}`), &a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither")
}

func TestCostAmount_UnmarshalHalfRangeRejected(t *testing.T) {
	var a CostAmount
	err := json.Unmarshal([]byte(`{"min_amount": 0.4}`), &a)
	require.Error(t, err)
}

func TestCostAmount_RoundTrip(t *testing.T) {
	a := RangeAmount(0.40, 0.60)
	a.Currency = "AUD"
	a.WeightUnit = "ton"
	a.EvaluationMethod = "index_lookup"
	a.ConfidenceScore = 0.8
	a.Source = CostSource{URL: "https://example.com", Excerpt: "AUD 400-600/ton"}

	raw, err := json.Marshal(a)
	require.NoError(t, err)

	var back CostAmount
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, a, back)
}
