// Package aggregate turns gathered price observations into a final cached
// cost estimate, delegating to a structured generation call when heuristics
// are insufficient.
package aggregate

import (
	"context"
	"encoding/json"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/platewise/costoracle/internal/cache"
	"github.com/platewise/costoracle/internal/gather"
	"github.com/platewise/costoracle/internal/model"
	"github.com/platewise/costoracle/internal/quality"
	"github.com/platewise/costoracle/pkg/anthropic"
)

// noDataJustification is the fixed message on the canonical empty estimate.
const noDataJustification = "No usable wholesale price data was found for this ingredient and location."

// Gatherer is the search-gathering capability the engine consumes.
type Gatherer interface {
	Gather(ctx context.Context, target model.Target, forceGlobal bool) (*gather.Result, error)
}

// Generator is the structured text-generation capability the engine consumes.
type Generator interface {
	GenerateStructured(ctx context.Context, req anthropic.StructuredRequest) (json.RawMessage, error)
}

// Engine is the cost aggregator. All collaborators are injected; the engine
// itself performs no retries and no timeouts beyond what ctx carries.
type Engine struct {
	cache     cache.Cache
	gatherer  Gatherer
	generator Generator
	scorer    *quality.Scorer

	genModel     string
	genMaxTokens int
}

// Option configures an Engine.
type Option func(*Engine)

// WithGenerationModel overrides the model used for the generation call.
func WithGenerationModel(m string) Option {
	return func(e *Engine) {
		if m != "" {
			e.genModel = m
		}
	}
}

// WithGenerationMaxTokens overrides the generation token cap.
func WithGenerationMaxTokens(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.genMaxTokens = n
		}
	}
}

// WithScorer overrides the quality scorer, mainly to pin the clock in tests.
func WithScorer(s *quality.Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// NewEngine creates a cost aggregation engine.
func NewEngine(c cache.Cache, g Gatherer, gen Generator, opts ...Option) *Engine {
	e := &Engine{
		cache:        c,
		gatherer:     g,
		generator:    gen,
		scorer:       quality.NewScorer(),
		genModel:     "claude-sonnet-4-5-20250929",
		genMaxTokens: 4096,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// GetCostEstimate returns the cost estimate for a target, serving from cache
// when possible. Quality scores are recomputed from the stored sources on
// every cache hit, so scoring changes apply retroactively.
func (e *Engine) GetCostEstimate(ctx context.Context, target model.Target) (*model.CostEstimate, bool, error) {
	key := target.Key()

	cached, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		cached.Quality = e.scorer.Compute(cached.Sources, cached.DerivationType, cached.GeoProximity)
		zap.L().Debug("aggregate: cache hit", zap.String("key", key))
		return cached, true, nil
	}

	observations, err := e.gatherUsable(ctx, target)
	if err != nil {
		return nil, false, err
	}
	if len(observations) == 0 {
		empty := emptyEstimate()
		if err := e.cache.Put(ctx, key, empty); err != nil {
			return nil, false, err
		}
		zap.L().Info("aggregate: no usable observations", zap.String("key", key))
		return empty, false, nil
	}

	estimate, err := e.generate(ctx, target, candidateSet(observations))
	if err != nil {
		return nil, false, err
	}

	estimate.Quality = e.scorer.Compute(estimate.Sources, estimate.DerivationType, estimate.GeoProximity)

	if err := e.cache.Put(ctx, key, estimate); err != nil {
		return nil, false, err
	}
	zap.L().Info("aggregate: estimated",
		zap.String("key", key),
		zap.Float64("cost_in_usd", estimate.CostInUSD),
		zap.String("band", estimate.Quality.Band),
	)
	return estimate, false, nil
}

// gatherUsable runs the two-tier gather policy and strips non-positive
// prices. A second pass with forceGlobal runs only when the first yields zero
// usable observations without having escalated internally; there is never a
// third pass.
func (e *Engine) gatherUsable(ctx context.Context, target model.Target) ([]gather.Observation, error) {
	result, err := e.gatherer.Gather(ctx, target, false)
	if err != nil {
		return nil, err
	}
	usable := filterPositive(result.Observations)

	if len(usable) == 0 && !result.UsedGlobal {
		result, err = e.gatherer.Gather(ctx, target, true)
		if err != nil {
			return nil, err
		}
		usable = filterPositive(result.Observations)
	}
	return usable, nil
}

// filterPositive removes cost entries without a strictly positive value and
// drops observations left with no entries.
func filterPositive(observations []gather.Observation) []gather.Observation {
	var out []gather.Observation
	for _, obs := range observations {
		var costs []model.CostAmount
		for _, c := range obs.Factor.Costs {
			if c.Positive() {
				costs = append(costs, c)
			}
		}
		if len(costs) == 0 {
			continue
		}
		obs.Factor.Costs = costs
		out = append(out, obs)
	}
	return out
}

// candidateSet prefers preferred-tagged observations when any exist.
func candidateSet(observations []gather.Observation) []gather.Observation {
	var preferred []gather.Observation
	for _, obs := range observations {
		if obs.Provenance == gather.ProvenancePreferred {
			preferred = append(preferred, obs)
		}
	}
	if len(preferred) > 0 {
		return preferred
	}
	return observations
}

// generate runs the structured generation call and shapes its output into a
// CostEstimate. A response that fails to decode degrades to the canonical
// empty estimate rather than failing the lookup.
func (e *Engine) generate(ctx context.Context, target model.Target, candidates []gather.Observation) (*model.CostEstimate, error) {
	prompt, err := buildPrompt(target, candidates)
	if err != nil {
		return nil, err
	}

	raw, err := e.generator.GenerateStructured(ctx, anthropic.StructuredRequest{
		Model:           e.genModel,
		MaxTokens:       int64(e.genMaxTokens),
		System:          systemPrompt,
		Prompt:          prompt,
		ToolName:        costEstimateToolName,
		ToolDescription: costEstimateToolDescription,
		Properties:      costEstimateProperties(),
		Required:        costEstimateRequired(),
	})
	if err != nil {
		return nil, eris.Wrap(err, "aggregate: generation")
	}

	var out model.CostEstimate
	if err := json.Unmarshal(raw, &out); err != nil {
		zap.L().Warn("aggregate: malformed generation output, degrading to empty estimate",
			zap.String("key", target.Key()),
			zap.Error(err),
		)
		return emptyEstimate(), nil
	}

	// An unscored response cannot be trusted: no sources means no estimate.
	if len(out.Sources) == 0 {
		return emptyEstimate(), nil
	}

	out.CostInUSD = round2(out.CostInUSD)
	if out.WeightUnit == "" {
		out.WeightUnit = "kg"
	}
	validateCurrency(&out)

	return &out, nil
}

// validateCurrency clears the local-currency fields when the reported code is
// not a valid ISO 4217 unit.
func validateCurrency(e *model.CostEstimate) {
	if e.LocalCurrencyCode == "" {
		e.CostInLocalCurrency = nil
		return
	}
	if _, err := currency.ParseISO(e.LocalCurrencyCode); err != nil {
		zap.L().Debug("aggregate: dropping invalid currency code",
			zap.String("code", e.LocalCurrencyCode),
		)
		e.LocalCurrencyCode = ""
		e.CostInLocalCurrency = nil
	}
}

// emptyEstimate is the canonical zero record for targets with no usable data.
// It is cached like any other estimate so repeat lookups short-circuit.
func emptyEstimate() *model.CostEstimate {
	return &model.CostEstimate{
		CostInUSD:     0,
		WeightUnit:    "kg",
		Justification: noDataJustification,
		Sources:       []model.SourceObservation{},
		Quality: model.QualityScores{
			Band: model.BandLow,
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
