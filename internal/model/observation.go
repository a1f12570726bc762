package model

// SourceType classifies the provenance of a price observation.
type SourceType string

const (
	SourceCommodityIndex SourceType = "commodity_index"
	SourceMajorVendor    SourceType = "major_vendor"
	SourceTradeStats     SourceType = "trade_stats"
	SourceSupplierQuote  SourceType = "supplier_quote"
	SourceIndustryReport SourceType = "industry_report"
	SourceWebSecondary   SourceType = "web_secondary"
	SourceAnecdotal      SourceType = "anecdotal"
)

// DerivationType describes how directly a price maps to the target location.
type DerivationType string

const (
	DerivationDirectLocal            DerivationType = "direct_local"
	DerivationDirectRegional         DerivationType = "direct_regional"
	DerivationInferredRegional       DerivationType = "inferred_regional"
	DerivationInferredMaterialAnalog DerivationType = "inferred_material_analog"
	DerivationHeuristic              DerivationType = "heuristic"
)

// GeoProximity describes how close the observation's market is to the target
// location.
type GeoProximity string

const (
	ProximitySameCluster                GeoProximity = "same_cluster"
	ProximitySameCountrySameMarket      GeoProximity = "same_country_same_market"
	ProximitySameCountryDifferentMarket GeoProximity = "same_country_different_market"
	ProximityNeighboringCountry         GeoProximity = "neighboring_country"
	ProximitySameRegion                 GeoProximity = "same_region"
	ProximityDifferentRegion            GeoProximity = "different_region"
)

// SourceObservation is one price data point extracted from a search result.
// Created during gathering; consumed by scoring and aggregation; never mutated.
type SourceObservation struct {
	SourceType       SourceType `json:"source_type,omitempty"`
	AgeMonths        *int       `json:"age_months,omitempty"`
	ObservedAt       string     `json:"observed_at,omitempty"` // "2006", "2006-01", or "2006-01-02"
	RawPriceUSDPerKg *float64   `json:"raw_price_usd_per_kg,omitempty"`
	URL              string     `json:"url"`
	Snippet          string     `json:"snippet,omitempty"`
}
