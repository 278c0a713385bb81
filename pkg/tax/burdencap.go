package tax

import (
	"encoding/json"
	"strconv"

	"github.com/iwvelando/property-tax/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// CapState is the outcome of the burden-cap decision.
type CapState string

const (
	// CapNoPriorYear means no prior-year tax was given; the cap does not apply.
	CapNoPriorYear CapState = "no_prior_year"
	// CapUncapped means the computed tax stayed at or below the cap.
	CapUncapped CapState = "uncapped"
	// CapCapped means the cap replaced the computed tax.
	CapCapped CapState = "capped"
)

// OptionalAmount is a won amount that may be absent. It encodes as JSON null
// when absent.
type OptionalAmount struct {
	Value int64
	Valid bool
}

// SomeAmount returns a present amount.
func SomeAmount(value int64) OptionalAmount {
	return OptionalAmount{Value: value, Valid: true}
}

// MarshalJSON implements json.Marshaler.
func (o OptionalAmount) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, o.Value, 10), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalAmount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OptionalAmount{}
		return nil
	}
	var value int64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*o = SomeAmount(value)
	return nil
}

// CapDecision is the base property tax after the year-over-year limiter.
type CapDecision struct {
	State CapState
	// Cap is absent only in CapNoPriorYear; it is reported even when not binding.
	Cap     OptionalAmount
	BaseTax int64
}

// Applied reports whether the cap replaced the computed tax.
func (d CapDecision) Applied() bool {
	return d.State == CapCapped
}

// ApplyBurdenCap limits the computed base tax to floor(prior * capRate / 10) * 10.
// Only the base property tax is ever capped. The comparison is exact; a cap
// too large for int64 is reported saturated and never binds.
func ApplyBurdenCap(computedBaseTax, priorYearBaseTax int64, capRate decimal.Decimal) CapDecision {
	if priorYearBaseTax <= 0 {
		return CapDecision{State: CapNoPriorYear, BaseTax: computedBaseTax}
	}

	limit := mathutil.FloorToUnitDecimal(mathutil.Won(priorYearBaseTax).Mul(capRate))
	if mathutil.Won(computedBaseTax).GreaterThan(limit) {
		capped := limit.IntPart()
		return CapDecision{State: CapCapped, Cap: SomeAmount(capped), BaseTax: capped}
	}
	return CapDecision{
		State:   CapUncapped,
		Cap:     SomeAmount(mathutil.SaturateToUnit(limit)),
		BaseTax: computedBaseTax,
	}
}
