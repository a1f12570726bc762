// Package quality computes the deterministic multi-factor quality score
// attached to every cost estimate. Scoring is pure: no I/O, no failures,
// neutral defaults wherever source metadata is missing.
package quality

import (
	"math"
	"time"

	"github.com/platewise/costoracle/internal/model"
)

// Composite weights. They must sum to 1.
const (
	weightRecency     = 0.30
	weightSource      = 0.25
	weightEstimation  = 0.20
	weightConsistency = 0.15
	weightProximity   = 0.10
)

const neutralScore = 50

// sourceTypeScores maps observation provenance to a 0-100 trust score.
var sourceTypeScores = map[model.SourceType]float64{
	model.SourceCommodityIndex: 80,
	model.SourceMajorVendor:    75,
	model.SourceTradeStats:     70,
	model.SourceSupplierQuote:  65,
	model.SourceIndustryReport: 55,
	model.SourceWebSecondary:   30,
	model.SourceAnecdotal:      15,
}

// estimationScores maps derivation type to a 0-100 score.
var estimationScores = map[model.DerivationType]float64{
	model.DerivationDirectLocal:            100,
	model.DerivationDirectRegional:         85,
	model.DerivationInferredRegional:       70,
	model.DerivationInferredMaterialAnalog: 60,
	model.DerivationHeuristic:              40,
}

// proximityScores maps geographic proximity to a 0-100 score.
var proximityScores = map[model.GeoProximity]float64{
	model.ProximitySameCluster:                100,
	model.ProximitySameCountrySameMarket:      80,
	model.ProximitySameCountryDifferentMarket: 60,
	model.ProximityNeighboringCountry:         45,
	model.ProximitySameRegion:                 30,
	model.ProximityDifferentRegion:            15,
}

// Scorer derives quality scores from source metadata.
type Scorer struct {
	now time.Time
}

// NewScorer creates a Scorer anchored at the current time.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now()}
}

// WithNow sets a fixed time for testing.
func (s *Scorer) WithNow(t time.Time) *Scorer {
	s.now = t
	return s
}

// Compute turns per-source metadata into the composite quality score and band.
// An empty source list yields the hard zero record: an estimate with no
// sources at all must never present a misleadingly neutral score.
func (s *Scorer) Compute(sources []model.SourceObservation, derivation model.DerivationType, proximity model.GeoProximity) model.QualityScores {
	if len(sources) == 0 {
		return model.QualityScores{Band: model.BandLow}
	}

	q := model.QualityScores{
		Recency:     s.recencyScore(sources),
		Source:      sourceScore(sources),
		Estimation:  estimationScore(derivation),
		Consistency: consistencyScore(sources),
		Proximity:   proximityScore(derivation, proximity),
	}

	composite := weightRecency*q.Recency +
		weightSource*q.Source +
		weightEstimation*q.Estimation +
		weightConsistency*q.Consistency +
		weightProximity*q.Proximity

	q.Composite = math.Round(composite*100) / 100
	q.Band = Band(q.Composite)
	return q
}

// Band maps a composite score to its discrete band.
func Band(composite float64) string {
	switch {
	case composite >= 80:
		return model.BandHigh
	case composite >= 60:
		return model.BandMedium
	case composite >= 40:
		return model.BandLowMedium
	default:
		return model.BandLow
	}
}

// recencyScore averages per-source freshness scores.
func (s *Scorer) recencyScore(sources []model.SourceObservation) float64 {
	var total float64
	for _, src := range sources {
		total += s.singleRecency(src)
	}
	return total / float64(len(sources))
}

// singleRecency scores one observation's age. When both an explicit age tag
// and an observed date are present, the larger implied age wins: a stale
// price must not masquerade as fresh behind a sloppy age tag.
func (s *Scorer) singleRecency(src model.SourceObservation) float64 {
	age, known := effectiveAgeMonths(src, s.now)
	if !known {
		return neutralScore
	}
	switch {
	case age <= 1:
		return 100
	case age <= 3:
		return 80
	case age <= 6:
		return 50
	case age <= 12:
		return 35
	default:
		return 20
	}
}

// effectiveAgeMonths resolves the observation's age in months. Returns
// known=false when neither an age tag nor a parseable date is available.
func effectiveAgeMonths(src model.SourceObservation, now time.Time) (months int, known bool) {
	if src.AgeMonths != nil {
		months = *src.AgeMonths
		known = true
	}
	if t, ok := parseObservedAt(src.ObservedAt); ok {
		implied := monthsBetween(t, now)
		if !known || implied > months {
			months = implied
		}
		known = true
	}
	return months, known
}

// parseObservedAt accepts full dates, year-month, and year-only strings.
// Year-only normalizes to Jan 1; year-month to the 1st.
func parseObservedAt(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// monthsBetween returns whole calendar months from t to now, floored at zero.
func monthsBetween(t, now time.Time) int {
	months := (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month())
	if now.Day() < t.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months
}

// sourceScore averages per-source provenance trust.
func sourceScore(sources []model.SourceObservation) float64 {
	var total float64
	for _, src := range sources {
		switch {
		case src.SourceType == "":
			total += neutralScore
		default:
			if v, ok := sourceTypeScores[src.SourceType]; ok {
				total += v
			} else {
				total += 40
			}
		}
	}
	return total / float64(len(sources))
}

func estimationScore(derivation model.DerivationType) float64 {
	if derivation == "" {
		return neutralScore
	}
	if v, ok := estimationScores[derivation]; ok {
		return v
	}
	return neutralScore
}

// consistencyScore measures relative spread (population stdev over mean) of
// the raw per-kg prices. Fewer than two usable prices scores a
// neutral-leaning-good 70: there is nothing to disagree with.
func consistencyScore(sources []model.SourceObservation) float64 {
	var prices []float64
	for _, src := range sources {
		if src.RawPriceUSDPerKg != nil {
			prices = append(prices, *src.RawPriceUSDPerKg)
		}
	}
	if len(prices) < 2 {
		return 70
	}

	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))
	if mean == 0 {
		return 30
	}

	var variance float64
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(len(prices))
	spread := math.Abs(math.Sqrt(variance) / mean)

	switch {
	case spread <= 0.05:
		return 100
	case spread <= 0.15:
		return 80
	case spread <= 0.30:
		return 60
	default:
		return 30
	}
}

// proximityScore scores geographic closeness. A non-local derivation cannot
// honestly claim close cross-country proximity, so such claims are downgraded
// to different_region before lookup.
func proximityScore(derivation model.DerivationType, proximity model.GeoProximity) float64 {
	if proximity == "" {
		return neutralScore
	}
	if derivation != model.DerivationDirectLocal {
		switch proximity {
		case model.ProximitySameCountrySameMarket,
			model.ProximitySameCountryDifferentMarket,
			model.ProximityNeighboringCountry,
			model.ProximitySameRegion:
			proximity = model.ProximityDifferentRegion
		}
	}
	if v, ok := proximityScores[proximity]; ok {
		return v
	}
	return neutralScore
}
