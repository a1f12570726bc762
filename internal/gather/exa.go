package gather

import (
	"context"
	"encoding/json"

	"github.com/platewise/costoracle/pkg/exa"
)

// costFactorSchema is the JSON schema the search provider fills per result.
// Field names match the CostFactor / model.CostAmount wire shape.
const costFactorSchema = `{
  "type": "object",
  "properties": {
    "ingredient_name": {"type": "string"},
    "location_name": {"type": "string"},
    "costs": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "amount": {"type": "number"},
          "min_amount": {"type": "number"},
          "max_amount": {"type": "number"},
          "currency": {"type": "string"},
          "weight_unit": {"type": "string"},
          "evaluation_method": {"type": "string"},
          "confidence_score": {"type": "number", "minimum": 0, "maximum": 1},
          "source": {
            "type": "object",
            "properties": {
              "url": {"type": "string"},
              "excerpt": {"type": "string"}
            },
            "required": ["url"]
          }
        },
        "required": ["currency", "weight_unit", "confidence_score", "source"]
      }
    }
  },
  "required": ["ingredient_name", "costs"]
}`

// ExaSearcher adapts the Exa client to the Searcher capability, attaching the
// cost-factor summary schema to every request.
type ExaSearcher struct {
	client exa.Client
}

// NewExaSearcher wraps an Exa client.
func NewExaSearcher(client exa.Client) *ExaSearcher {
	return &ExaSearcher{client: client}
}

// Search implements Searcher.
func (s *ExaSearcher) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	resp, err := s.client.Search(ctx, exa.SearchRequest{
		Query:          query,
		NumResults:     opts.Limit,
		IncludeDomains: opts.IncludeDomains,
		Contents: &exa.Contents{
			Summary: &exa.Summary{
				Query:  "Extract the wholesale cost data for the ingredient, per the schema.",
				Schema: json.RawMessage(costFactorSchema),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		sr := SearchResult{URL: r.URL, Excerpt: r.Text}
		if r.Summary != "" {
			sr.Summary = json.RawMessage(r.Summary)
		}
		out = append(out, sr)
	}
	return out, nil
}
