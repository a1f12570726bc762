package model

// QualityScores holds the per-factor 0-100 scores, the weighted composite,
// and the derived band.
type QualityScores struct {
	Recency     float64 `json:"recency"`
	Source      float64 `json:"source"`
	Estimation  float64 `json:"estimation"`
	Consistency float64 `json:"consistency"`
	Proximity   float64 `json:"proximity"`
	Composite   float64 `json:"composite"`
	Band        string  `json:"band"`
}

// Quality bands derived from the composite score.
const (
	BandHigh      = "high"
	BandMedium    = "medium"
	BandLowMedium = "low_medium"
	BandLow       = "low"
)

// CostEstimate is the final priced artifact for a target. Produced once,
// cached indefinitely, re-served on cache hit with quality scores recomputed
// from Sources.
type CostEstimate struct {
	CostInUSD           float64             `json:"cost_in_usd"`
	CostInLocalCurrency *float64            `json:"cost_in_local_currency,omitempty"`
	LocalCurrencyCode   string              `json:"local_currency_code,omitempty"`
	WeightUnit          string              `json:"weight_unit"`
	Quality             QualityScores       `json:"quality_scores"`
	Justification       string              `json:"justification"`
	Sources             []SourceObservation `json:"sources"`
	DerivationType      DerivationType      `json:"derivation_type,omitempty"`
	GeoProximity        GeoProximity        `json:"geo_proximity,omitempty"`
	IsInferred          bool                `json:"is_inferred"`
}
