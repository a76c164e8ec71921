// Package pricing resolves a product's base price and discount rule into the unit price a customer pays.
// Money is integer minor units; any fractional result is truncated so a customer is never overcharged.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidDiscountRule = errors.New("invalid discount rule")

type DiscountKind string

const (
	KindNone    DiscountKind = ""
	KindAmount  DiscountKind = "amount"
	KindPercent DiscountKind = "percent"
)

var hundred = decimal.NewFromInt(100)

type DiscountRule struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

func None() DiscountRule {
	return DiscountRule{}
}

func Amount(v int64) DiscountRule {
	return DiscountRule{Kind: KindAmount, Value: decimal.NewFromInt(v)}
}

func Percent(v decimal.Decimal) DiscountRule {
	return DiscountRule{Kind: KindPercent, Value: v}
}

func PercentInt(v int64) DiscountRule {
	return Percent(decimal.NewFromInt(v))
}

func (r DiscountRule) IsNone() bool {
	return r.Kind == KindNone
}

func (r DiscountRule) Validate() error {
	switch r.Kind {
	case KindNone:
		return nil
	case KindAmount:
		if r.Value.IsNegative() {
			return fmt.Errorf("%w: negative amount %s", ErrInvalidDiscountRule, r.Value)
		}
	case KindPercent:
		if r.Value.IsNegative() || r.Value.GreaterThan(hundred) {
			return fmt.Errorf("%w: percent %s outside [0,100]", ErrInvalidDiscountRule, r.Value)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidDiscountRule, r.Kind)
	}

	return nil
}

// Normalize collapses an invalid rule to None.
func (r DiscountRule) Normalize() DiscountRule {
	if r.Validate() != nil {
		return None()
	}
	return r
}

func (r DiscountRule) String() string {
	switch r.Kind {
	case KindAmount:
		return "-" + r.Value.String()
	case KindPercent:
		return "-" + r.Value.String() + "%"
	default:
		return "none"
	}
}

// EffectiveUnitPrice returns base minus the rule's discount, truncated and clamped to [0, base].
// A negative base is treated as zero and an invalid rule as no discount.
func EffectiveUnitPrice(base int64, rule DiscountRule) int64 {
	if base <= 0 {
		return 0
	}

	rule = rule.Normalize()

	var price int64
	switch rule.Kind {
	case KindAmount:
		price = decimal.NewFromInt(base).Sub(rule.Value).Floor().IntPart()
	case KindPercent:
		price = decimal.NewFromInt(base).
			Mul(hundred.Sub(rule.Value)).
			Div(hundred).
			Floor().
			IntPart()
	default:
		price = base
	}

	return clamp(price, 0, base)
}

func DiscountAmount(base int64, rule DiscountRule) int64 {
	if base <= 0 {
		return 0
	}
	return base - EffectiveUnitPrice(base, rule)
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
