package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// CostSource points at where a cost entry came from.
type CostSource struct {
	URL     string `json:"url"`
	Excerpt string `json:"excerpt,omitempty"`
}

type amountKind int

const (
	kindSingle amountKind = iota + 1
	kindRange
)

// CostAmount is a single price entry from a structured search summary.
// It holds exactly one of a single amount or a {min, max} range; the
// constructors are the only way to build a valid value.
type CostAmount struct {
	kind      amountKind
	amount    float64
	minAmount float64
	maxAmount float64

	Currency         string     `json:"currency"`
	WeightUnit       string     `json:"weight_unit"`
	EvaluationMethod string     `json:"evaluation_method,omitempty"`
	ConfidenceScore  float64    `json:"confidence_score"`
	Source           CostSource `json:"source"`
}

// SingleAmount builds a CostAmount carrying one price point.
func SingleAmount(v float64) CostAmount {
	return CostAmount{kind: kindSingle, amount: v}
}

// RangeAmount builds a CostAmount carrying a {min, max} price range.
func RangeAmount(min, max float64) CostAmount {
	return CostAmount{kind: kindRange, minAmount: min, maxAmount: max}
}

// IsRange reports whether the amount is a range.
func (a CostAmount) IsRange() bool { return a.kind == kindRange }

// Value returns the single amount, or the midpoint for ranges.
func (a CostAmount) Value() float64 {
	if a.kind == kindRange {
		return (a.minAmount + a.maxAmount) / 2
	}
	return a.amount
}

// Bounds returns the range bounds. For a single amount both bounds equal it.
func (a CostAmount) Bounds() (min, max float64) {
	if a.kind == kindRange {
		return a.minAmount, a.maxAmount
	}
	return a.amount, a.amount
}

// Positive reports whether the amount carries a strictly positive value.
// For ranges, at least one bound must be positive.
func (a CostAmount) Positive() bool {
	if a.kind == kindRange {
		return a.minAmount > 0 || a.maxAmount > 0
	}
	return a.amount > 0
}

type amountJSON struct {
	Amount           *float64   `json:"amount,omitempty"`
	MinAmount        *float64   `json:"min_amount,omitempty"`
	MaxAmount        *float64   `json:"max_amount,omitempty"`
	Currency         string     `json:"currency"`
	WeightUnit       string     `json:"weight_unit"`
	EvaluationMethod string     `json:"evaluation_method,omitempty"`
	ConfidenceScore  float64    `json:"confidence_score"`
	Source           CostSource `json:"source"`
}

// MarshalJSON emits either amount or min_amount/max_amount, never both.
func (a CostAmount) MarshalJSON() ([]byte, error) {
	out := amountJSON{
		Currency:         a.Currency,
		WeightUnit:       a.WeightUnit,
		EvaluationMethod: a.EvaluationMethod,
		ConfidenceScore:  a.ConfidenceScore,
		Source:           a.Source,
	}
	switch a.kind {
	case kindRange:
		out.MinAmount = &a.minAmount
		out.MaxAmount = &a.maxAmount
	case kindSingle:
		out.Amount = &a.amount
	default:
		return nil, eris.New("model: cost amount has no value")
	}
	return json.Marshal(out)
}

// UnmarshalJSON rejects payloads that carry both a single amount and a range,
// or neither.
func (a *CostAmount) UnmarshalJSON(data []byte) error {
	var in amountJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return eris.Wrap(err, "model: unmarshal cost amount")
	}

	hasSingle := in.Amount != nil
	hasRange := in.MinAmount != nil || in.MaxAmount != nil

	switch {
	case hasSingle && hasRange:
		return eris.New("model: cost amount has both amount and min/max range")
	case hasSingle:
		*a = SingleAmount(*in.Amount)
	case in.MinAmount != nil && in.MaxAmount != nil:
		*a = RangeAmount(*in.MinAmount, *in.MaxAmount)
	default:
		return eris.New("model: cost amount has neither amount nor a full min/max range")
	}

	a.Currency = in.Currency
	a.WeightUnit = in.WeightUnit
	a.EvaluationMethod = in.EvaluationMethod
	a.ConfidenceScore = in.ConfidenceScore
	a.Source = in.Source
	return nil
}
