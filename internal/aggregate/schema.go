package aggregate

// costEstimateToolName is the forced tool the generation call must answer with.
const costEstimateToolName = "record_cost_estimate"

const costEstimateToolDescription = "Record the final wholesale cost estimate for the target ingredient and location."

var sourceTypeValues = []string{
	"commodity_index", "major_vendor", "trade_stats", "supplier_quote",
	"industry_report", "web_secondary", "anecdotal",
}

var derivationTypeValues = []string{
	"direct_local", "direct_regional", "inferred_regional",
	"inferred_material_analog", "heuristic",
}

var geoProximityValues = []string{
	"same_cluster", "same_country_same_market", "same_country_different_market",
	"neighboring_country", "same_region", "different_region",
}

// costEstimateProperties is the JSON-schema property map for the generation
// output. Field names mirror the CostEstimate wire shape.
func costEstimateProperties() map[string]any {
	return map[string]any{
		"cost_in_usd": map[string]any{
			"type":        "number",
			"description": "Wholesale cost in US dollars per weight_unit. 0 when data is insufficient.",
		},
		"cost_in_local_currency": map[string]any{
			"type":        "number",
			"description": "Cost in the target location's currency, when convertible.",
		},
		"local_currency_code": map[string]any{
			"type":        "string",
			"description": "ISO 4217 code for cost_in_local_currency.",
		},
		"weight_unit": map[string]any{
			"type":        "string",
			"description": "Unit the cost is per. Normalize to kg.",
		},
		"justification": map[string]any{
			"type":        "string",
			"description": "How the estimate was derived from the observations.",
		},
		"derivation_type": map[string]any{
			"type": "string",
			"enum": derivationTypeValues,
		},
		"geo_proximity": map[string]any{
			"type": "string",
			"enum": geoProximityValues,
		},
		"is_inferred": map[string]any{
			"type":        "boolean",
			"description": "True when background knowledge (currency conversion) contributed.",
		},
		"sources": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"source_type":          map[string]any{"type": "string", "enum": sourceTypeValues},
					"age_months":           map[string]any{"type": "integer"},
					"observed_at":          map[string]any{"type": "string", "description": "YYYY, YYYY-MM, or YYYY-MM-DD"},
					"raw_price_usd_per_kg": map[string]any{"type": "number"},
					"url":                  map[string]any{"type": "string"},
					"snippet":              map[string]any{"type": "string"},
				},
				"required": []string{"url"},
			},
		},
	}
}

// costEstimateRequired lists the fields the model must always fill.
func costEstimateRequired() []string {
	return []string{"cost_in_usd", "weight_unit", "justification", "sources"}
}
