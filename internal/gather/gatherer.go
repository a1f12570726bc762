// Package gather collects raw price observations for a target from a
// structured web-search provider, with a two-tier local-then-global
// escalation policy and preferred-domain deduplication.
package gather

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/platewise/costoracle/internal/model"
)

// Provenance tags which search mode produced an observation.
type Provenance string

const (
	ProvenancePreferred Provenance = "preferred"
	ProvenanceGeneral   Provenance = "general"
)

// minUsableConfidence is the floor below which a provider-reported cost entry
// does not count toward keeping its summary.
const minUsableConfidence = 0.6

// defaultEscalationThreshold is the combined result count under which the
// location-scoped pass escalates to the global query.
const defaultEscalationThreshold = 3

// SearchOptions configures one underlying search call.
type SearchOptions struct {
	IncludeDomains []string
	Limit          int
}

// SearchResult is one hit from the search provider. Summary carries the
// provider-filled JSON blob conforming to the cost-factor schema.
type SearchResult struct {
	URL     string
	Excerpt string
	Summary json.RawMessage
}

// Searcher is the structured web-search capability the gatherer consumes.
type Searcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}

// CostFactor is the structured summary shape the provider fills per result.
type CostFactor struct {
	IngredientName string             `json:"ingredient_name"`
	LocationName   string             `json:"location_name"`
	Costs          []model.CostAmount `json:"costs"`
}

// Observation is one search result with a parsed, filtered cost factor.
type Observation struct {
	Provenance Provenance `json:"provenance"`
	URL        string     `json:"url"`
	Excerpt    string     `json:"excerpt,omitempty"`
	Factor     CostFactor `json:"factor"`
}

// Result is the outcome of one Gather call.
type Result struct {
	Observations []Observation
	UsedGlobal   bool
}

// Gatherer issues location-scoped and global searches in two modes and
// merges the results.
type Gatherer struct {
	searcher  Searcher
	domains   []string
	limit     int
	threshold int
}

// Option configures a Gatherer.
type Option func(*Gatherer)

// WithDomains overrides the preferred-domain allow-list.
func WithDomains(domains []string) Option {
	return func(g *Gatherer) {
		if len(domains) > 0 {
			g.domains = domains
		}
	}
}

// WithResultLimit caps results per underlying search call.
func WithResultLimit(n int) Option {
	return func(g *Gatherer) {
		if n > 0 {
			g.limit = n
		}
	}
}

// WithEscalationThreshold overrides the global-fallback result threshold.
func WithEscalationThreshold(n int) Option {
	return func(g *Gatherer) {
		if n > 0 {
			g.threshold = n
		}
	}
}

// New creates a Gatherer over the given searcher.
func New(searcher Searcher, opts ...Option) *Gatherer {
	g := &Gatherer{
		searcher:  searcher,
		domains:   DefaultPreferredDomains(),
		limit:     5,
		threshold: defaultEscalationThreshold,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// localQuery builds the location-scoped search query.
func localQuery(t model.Target) string {
	return fmt.Sprintf("%s wholesale price %s bulk commodity", t.IngredientName, t.LocationName)
}

// globalQuery builds the location-agnostic fallback query.
func globalQuery(t model.Target) string {
	return fmt.Sprintf("%s global wholesale commodity price", t.IngredientName)
}

// Gather runs the search strategy for a target. Unless forceGlobal, the
// location-scoped query runs first in both modes; the global query runs
// additionally when the pass yields fewer than the threshold of results.
// With forceGlobal only the global query runs. Search provider errors
// propagate unretried.
func (g *Gatherer) Gather(ctx context.Context, target model.Target, forceGlobal bool) (*Result, error) {
	var observations []Observation
	usedGlobal := forceGlobal

	if !forceGlobal {
		local, err := g.pass(ctx, localQuery(target))
		if err != nil {
			return nil, err
		}
		observations = local
		if len(local) < g.threshold {
			usedGlobal = true
		}
	}

	if usedGlobal {
		global, err := g.pass(ctx, globalQuery(target))
		if err != nil {
			return nil, err
		}
		observations = append(observations, global...)
	}

	observations = dedupe(observations)

	zap.L().Debug("gather: complete",
		zap.String("target", target.Key()),
		zap.Int("observations", len(observations)),
		zap.Bool("used_global", usedGlobal),
	)

	return &Result{Observations: observations, UsedGlobal: usedGlobal}, nil
}

// pass runs both search modes against one query concurrently and returns the
// kept observations, preferred first.
func (g *Gatherer) pass(ctx context.Context, query string) ([]Observation, error) {
	var preferred, general []Observation

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		results, err := g.searcher.Search(gctx, query, SearchOptions{IncludeDomains: g.domains, Limit: g.limit})
		if err != nil {
			return eris.Wrap(err, "gather: preferred search")
		}
		preferred = parseObservations(results, ProvenancePreferred)
		return nil
	})
	eg.Go(func() error {
		results, err := g.searcher.Search(gctx, query, SearchOptions{Limit: g.limit})
		if err != nil {
			return eris.Wrap(err, "gather: general search")
		}
		general = parseObservations(results, ProvenanceGeneral)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return append(preferred, general...), nil
}

// parseObservations converts raw search results into observations. Summaries
// that fail to parse are dropped; a summary is kept only when at least one
// cost entry carries a usable confidence and a positive value.
func parseObservations(results []SearchResult, provenance Provenance) []Observation {
	var out []Observation
	for _, r := range results {
		if len(r.Summary) == 0 {
			continue
		}
		var factor CostFactor
		if err := json.Unmarshal(r.Summary, &factor); err != nil {
			zap.L().Debug("gather: dropping malformed summary",
				zap.String("url", r.URL),
				zap.Error(err),
			)
			continue
		}
		if !hasUsableEntry(factor) {
			continue
		}
		out = append(out, Observation{
			Provenance: provenance,
			URL:        r.URL,
			Excerpt:    r.Excerpt,
			Factor:     factor,
		})
	}
	return out
}

// hasUsableEntry reports whether any cost entry clears the confidence floor
// with a strictly positive value.
func hasUsableEntry(factor CostFactor) bool {
	for _, c := range factor.Costs {
		if c.ConfidenceScore >= minUsableConfidence && c.Positive() {
			return true
		}
	}
	return false
}

// dedupe gives preferred observations strict priority: every preferred
// observation is kept and its cost source URLs claimed; a general observation
// survives only if it contributes at least one unclaimed source URL, and once
// kept it claims all of its URLs.
func dedupe(observations []Observation) []Observation {
	seen := make(map[string]bool)
	var out []Observation

	for _, obs := range observations {
		if obs.Provenance != ProvenancePreferred {
			continue
		}
		for _, c := range obs.Factor.Costs {
			seen[c.Source.URL] = true
		}
		out = append(out, obs)
	}

	for _, obs := range observations {
		if obs.Provenance != ProvenanceGeneral {
			continue
		}
		contributes := false
		for _, c := range obs.Factor.Costs {
			if !seen[c.Source.URL] {
				contributes = true
				break
			}
		}
		if !contributes {
			continue
		}
		for _, c := range obs.Factor.Costs {
			seen[c.Source.URL] = true
		}
		out = append(out, obs)
	}

	return out
}
