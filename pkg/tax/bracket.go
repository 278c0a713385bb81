package tax

import (
	"fmt"
	"math"

	"github.com/iwvelando/property-tax/pkg/mathutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Unbounded marks the open-ended top bracket of a table.
const Unbounded int64 = math.MaxInt64

// Formula selects how a bracket turns a base into an amount.
type Formula int

const (
	// Progressive computes baseFee + (base - lowerBound) * rate.
	Progressive Formula = iota
	// Offset computes base * rate - offset.
	Offset
)

func (f Formula) String() string {
	switch f {
	case Progressive:
		return "progressive"
	case Offset:
		return "offset"
	default:
		return fmt.Sprintf("Formula(%d)", int(f))
	}
}

// MarshalText encodes the formula by name.
func (f Formula) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Bracket is one row of a rate table. The lower bound is the previous row's
// upper bound (zero for the first row).
type Bracket struct {
	UpperBound  int64           `json:"upperBound"`
	BaseFee     int64           `json:"baseFee"`
	Rate        decimal.Decimal `json:"rate"`
	Offset      int64           `json:"offset"`
	Description string          `json:"description"`
}

// Table is an ordered rate schedule, strictly increasing by UpperBound with
// an Unbounded last row.
type Table struct {
	Name     string    `json:"name"`
	Formula  Formula   `json:"formula"`
	Brackets []Bracket `json:"brackets"`
}

// Band is a resolved bracket together with its position in the table.
type Band struct {
	Bracket
	Index      int
	LowerBound int64
}

// Assessment is the outcome of evaluating a table for one base.
type Assessment struct {
	Band   Band
	Base   int64
	Amount int64
}

// Resolve finds the first bracket whose upper bound is at or above base.
func (t Table) Resolve(base int64) (Band, error) {
	if base < 0 {
		return Band{}, fmt.Errorf("%w: negative base %d for table %s", ErrInvalidInput, base, t.Name)
	}

	bracket, index, found := lo.FindIndexOf(t.Brackets, func(b Bracket) bool {
		return b.UpperBound >= base
	})
	if !found {
		return Band{}, fmt.Errorf("%w: table %s has no bracket covering %d", ErrInvalidSchedule, t.Name, base)
	}

	band := Band{Bracket: bracket, Index: index}
	if index > 0 {
		band.LowerBound = t.Brackets[index-1].UpperBound
	}
	return band, nil
}

// Evaluate resolves the bracket for base and computes its amount, truncated
// to ten won.
func (t Table) Evaluate(base int64) (Assessment, error) {
	band, err := t.Resolve(base)
	if err != nil {
		return Assessment{}, err
	}

	raw := t.rawAmount(band, base)
	if raw.IsNegative() {
		return Assessment{}, fmt.Errorf("%w: table %s bracket %d gives %s for base %d",
			ErrNegativeResult, t.Name, band.Index, raw.String(), base)
	}

	return Assessment{
		Band:   band,
		Base:   base,
		Amount: mathutil.FloorToUnit(raw),
	}, nil
}

// rawAmount applies the table's formula without any rounding.
func (t Table) rawAmount(band Band, base int64) decimal.Decimal {
	switch t.Formula {
	case Offset:
		return mathutil.Won(base).Mul(band.Rate).Sub(mathutil.Won(band.Offset))
	default:
		excess := mathutil.Won(base - band.LowerBound)
		return mathutil.Won(band.BaseFee).Add(excess.Mul(band.Rate))
	}
}
