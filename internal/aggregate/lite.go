package aggregate

import (
	"context"

	"go.uber.org/zap"

	"github.com/platewise/costoracle/internal/gather"
	"github.com/platewise/costoracle/internal/model"
)

const liteJustification = "Lowest positive gathered price, selected without generation."

// liteQuality is the fixed tag attached to lite estimates. It is a label,
// not a weighted computation: the lite path never inspects source metadata.
func liteQuality() model.QualityScores {
	return model.QualityScores{
		Estimation: 40,
		Composite:  60,
		Band:       model.BandMedium,
	}
}

// GetCostEstimateLite prices a target without a generation call by picking
// the single lowest positive price across all gathered observations. A cached
// full-precision estimate is served when one exists; lite results
// themselves are never written back, so the memo stays full-precision only.
func (e *Engine) GetCostEstimateLite(ctx context.Context, target model.Target) (*model.CostEstimate, error) {
	cached, ok, err := e.cache.Get(ctx, target.Key())
	if err != nil {
		return nil, err
	}
	if ok {
		cached.Quality = e.scorer.Compute(cached.Sources, cached.DerivationType, cached.GeoProximity)
		zap.L().Debug("aggregate: lite cache hit", zap.String("key", target.Key()))
		return cached, nil
	}

	observations, err := e.gatherUsable(ctx, target)
	if err != nil {
		return nil, err
	}

	// A range entry survives the positivity filter on its upper bound alone,
	// so its midpoint can still be non-positive. Those are not prices.
	var best *model.CostAmount
	var bestObs gather.Observation
	for _, obs := range observations {
		for _, c := range obs.Factor.Costs {
			c := c
			if c.Value() <= 0 {
				continue
			}
			if best == nil || c.Value() < best.Value() {
				best = &c
				bestObs = obs
			}
		}
	}
	if best == nil {
		return emptyEstimate(), nil
	}

	weightUnit := best.WeightUnit
	if weightUnit == "" {
		weightUnit = "kg"
	}

	estimate := &model.CostEstimate{
		CostInUSD:     round2(best.Value()),
		WeightUnit:    weightUnit,
		Justification: liteJustification,
		Sources: []model.SourceObservation{{
			URL:     best.Source.URL,
			Snippet: best.Source.Excerpt,
		}},
		Quality: liteQuality(),
	}

	zap.L().Debug("aggregate: lite estimate",
		zap.String("key", target.Key()),
		zap.Float64("cost", estimate.CostInUSD),
		zap.String("url", bestObs.URL),
	)
	return estimate, nil
}
