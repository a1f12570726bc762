package aggregate

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/platewise/costoracle/internal/gather"
	"github.com/platewise/costoracle/internal/model"
)

const systemPrompt = `You are a wholesale commodity price analyst. You turn raw web price observations into a single cost estimate for an ingredient at a location.

Rules:
- Use ONLY the observations provided. The one exception is currency conversion: you may use background knowledge of exchange rates, and whenever you do you MUST set is_inferred to true.
- Normalize every price to US dollars per kilogram. Convert tons, pounds, and other units to kilograms.
- When an observation gives a price range, use its midpoint.
- When several candidate prices survive, prefer observations tagged "preferred", drop clear outliers, then take the central tendency of the rest.
- For every source you rely on, report its source_type, age_months or observed_at, raw_price_usd_per_kg, and url as given in the observations.
- Report derivation_type for how directly the prices map to the target location, and geo_proximity for how close the observed markets are to it.
- If the observations are insufficient to price the ingredient, return cost_in_usd 0 with an empty sources list and a justification explaining what was missing.`

// buildPrompt renders the target and candidate observations as the user turn.
func buildPrompt(target model.Target, candidates []gather.Observation) (string, error) {
	raw, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "aggregate: marshal observations")
	}

	prompt := fmt.Sprintf(
		"Estimate the wholesale cost of %q in %s (%s).",
		target.IngredientName, target.LocationName, target.LocationCode,
	)
	if target.LifecycleStage != "" {
		prompt += fmt.Sprintf(" Lifecycle stage: %s.", target.LifecycleStage)
	}
	if target.Year != 0 {
		prompt += fmt.Sprintf(" Reference year: %d.", target.Year)
	}
	prompt += "\n\nObservations:\n" + string(raw)

	return prompt, nil
}
