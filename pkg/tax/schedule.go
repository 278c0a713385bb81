package tax

import (
	"fmt"

	"github.com/iwvelando/property-tax/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// RatioTier maps assessed values up to UpTo (inclusive) to a fair-market ratio.
type RatioTier struct {
	UpTo  int64           `json:"upTo"`
	Ratio decimal.Decimal `json:"ratio"`
}

// Schedule holds every statutory constant for one tax year.
type Schedule struct {
	Year int `json:"year"`

	// SingleHomeRatios apply to a single household owning a single home;
	// everyone else (multi-home owners, corporations) gets OtherOwnerRatio.
	SingleHomeRatios []RatioTier    `json:"singleHomeRatios"`
	OtherOwnerRatio  decimal.Decimal `json:"otherOwnerRatio"`

	// PreferentialCeiling is the highest assessed value still eligible for
	// the single-home preferential table.
	PreferentialCeiling  int64 `json:"preferentialCeiling"`
	PreferentialProperty Table `json:"preferentialProperty"`
	StandardProperty     Table `json:"standardProperty"`

	FireStandard   Table `json:"fireStandard"`
	FireSimplified Table `json:"fireSimplified"`

	UrbanRate     decimal.Decimal `json:"urbanRate"`
	EducationRate decimal.Decimal `json:"educationRate"`
	BurdenCapRate decimal.Decimal `json:"burdenCapRate"`
}

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultSchedule returns the 2025 residential schedule. A fresh value is
// built on every call so callers may modify it freely.
func DefaultSchedule() Schedule {
	return Schedule{
		Year: 2025,
		SingleHomeRatios: []RatioTier{
			{UpTo: 300_000_000, Ratio: rate("0.43")},
			{UpTo: 600_000_000, Ratio: rate("0.44")},
			{UpTo: Unbounded, Ratio: rate("0.45")},
		},
		OtherOwnerRatio:     rate("0.6"),
		PreferentialCeiling: 900_000_000,
		PreferentialProperty: Table{
			Name:    "property-preferential",
			Formula: Progressive,
			Brackets: []Bracket{
				{UpperBound: 60_000_000, BaseFee: 0, Rate: rate("0.005"),
					Description: "6천만원 이하: 과세표준의 0.5%"},
				{UpperBound: 150_000_000, BaseFee: 30_000, Rate: rate("0.001"),
					Description: "6천만원 초과 1.5억원 이하: 3만원 + 6천만원 초과금액의 0.1%"},
				{UpperBound: 300_000_000, BaseFee: 120_000, Rate: rate("0.002"),
					Description: "1.5억원 초과 3억원 이하: 12만원 + 1.5억원 초과금액의 0.2%"},
				{UpperBound: Unbounded, BaseFee: 420_000, Rate: rate("0.0035"),
					Description: "3억원 초과: 42만원 + 3억원 초과금액의 0.35%"},
			},
		},
		StandardProperty: Table{
			Name:    "property-standard",
			Formula: Progressive,
			Brackets: []Bracket{
				{UpperBound: 60_000_000, BaseFee: 0, Rate: rate("0.001"),
					Description: "6천만원 이하: 과세표준의 0.1%"},
				{UpperBound: 150_000_000, BaseFee: 60_000, Rate: rate("0.0015"),
					Description: "6천만원 초과 1.5억원 이하: 6만원 + 6천만원 초과금액의 0.15%"},
				{UpperBound: 300_000_000, BaseFee: 195_000, Rate: rate("0.0025"),
					Description: "1.5억원 초과 3억원 이하: 19.5만원 + 1.5억원 초과금액의 0.25%"},
				{UpperBound: Unbounded, BaseFee: 570_000, Rate: rate("0.004"),
					Description: "3억원 초과: 57만원 + 3억원 초과금액의 0.4%"},
			},
		},
		FireStandard: Table{
			Name:    "fire-standard",
			Formula: Progressive,
			Brackets: []Bracket{
				{UpperBound: 6_000_000, BaseFee: 0, Rate: rate("0.0004"),
					Description: "6백만원 이하: 10,000분의 4"},
				{UpperBound: 13_000_000, BaseFee: 2_400, Rate: rate("0.0005"),
					Description: "6백만원 초과 1천3백만원 이하: 2,400원 + 초과금액×10,000분의 5"},
				{UpperBound: 26_000_000, BaseFee: 5_900, Rate: rate("0.0006"),
					Description: "1천3백만원 초과 2천6백만원 이하: 5,900원 + 초과금액×10,000분의 6"},
				{UpperBound: 39_000_000, BaseFee: 13_700, Rate: rate("0.0008"),
					Description: "2천6백만원 초과 3천9백만원 이하: 13,700원 + 초과금액×10,000분의 8"},
				{UpperBound: 64_000_000, BaseFee: 24_100, Rate: rate("0.001"),
					Description: "3천9백만원 초과 6천4백만원 이하: 24,100원 + 초과금액×10,000분의 10"},
				{UpperBound: Unbounded, BaseFee: 49_100, Rate: rate("0.0012"),
					Description: "6천4백만원 초과: 49,100원 + 초과금액×10,000분의 12"},
			},
		},
		FireSimplified: Table{
			Name:    "fire-simplified",
			Formula: Offset,
			Brackets: []Bracket{
				{UpperBound: 6_000_000, Rate: rate("0.0004"), Offset: 0,
					Description: "6백만원 이하: 과세표준액×0.04%"},
				{UpperBound: 13_000_000, Rate: rate("0.0005"), Offset: 600,
					Description: "6백만원 초과 1천3백만원 이하: 과세표준액×0.05% - 600원"},
				{UpperBound: 26_000_000, Rate: rate("0.0006"), Offset: 1_900,
					Description: "1천3백만원 초과 2천6백만원 이하: 과세표준액×0.06% - 1,900원"},
				{UpperBound: 39_000_000, Rate: rate("0.0008"), Offset: 7_100,
					Description: "2천6백만원 초과 3천9백만원 이하: 과세표준액×0.08% - 7,100원"},
				{UpperBound: 64_000_000, Rate: rate("0.001"), Offset: 14_900,
					Description: "3천9백만원 초과 6천4백만원 이하: 과세표준액×0.1% - 14,900원"},
				{UpperBound: Unbounded, Rate: rate("0.0012"), Offset: 27_700,
					Description: "6천4백만원 초과: 과세표준액×0.12% - 27,700원"},
			},
		},
		UrbanRate:     rate("0.0014"),
		EducationRate: rate("0.2"),
		BurdenCapRate: rate("1.1"),
	}
}

// Tables lists every rate table in the schedule.
func (s Schedule) Tables() []Table {
	return []Table{s.PreferentialProperty, s.StandardProperty, s.FireStandard, s.FireSimplified}
}

// PropertyTable returns the base property tax table.
func (s Schedule) PropertyTable(preferential bool) Table {
	if preferential {
		return s.PreferentialProperty
	}
	return s.StandardProperty
}

// FireTable returns the fire-safety levy table for a rate mode.
func (s Schedule) FireTable(mode FireLevyMode) Table {
	if mode == FireLevySimplified {
		return s.FireSimplified
	}
	return s.FireStandard
}

// Validate checks that ratios and tables are well formed: bounds strictly
// increase, the last row is unbounded and no row goes negative at its own
// floor. Rows that disagree where they meet are legal; see Discontinuities.
func (s Schedule) Validate() error {
	if err := validateRatios(s.SingleHomeRatios); err != nil {
		return err
	}
	if s.OtherOwnerRatio.Sign() <= 0 {
		return fmt.Errorf("%w: other-owner ratio must be positive", ErrInvalidSchedule)
	}
	for name, r := range map[string]decimal.Decimal{
		"urban":      s.UrbanRate,
		"education":  s.EducationRate,
		"burden cap": s.BurdenCapRate,
	} {
		if r.IsNegative() {
			return fmt.Errorf("%w: %s rate is negative", ErrInvalidSchedule, name)
		}
	}
	for _, table := range s.Tables() {
		if err := table.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateRatios(tiers []RatioTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: no single-home ratio tiers", ErrInvalidSchedule)
	}
	for i, tier := range tiers {
		if tier.Ratio.Sign() <= 0 {
			return fmt.Errorf("%w: ratio tier %d must be positive", ErrInvalidSchedule, i)
		}
		if i > 0 && tier.UpTo <= tiers[i-1].UpTo {
			return fmt.Errorf("%w: ratio tier %d does not increase", ErrInvalidSchedule, i)
		}
	}
	if tiers[len(tiers)-1].UpTo != Unbounded {
		return fmt.Errorf("%w: last ratio tier must be unbounded", ErrInvalidSchedule)
	}
	return nil
}

// Validate checks a single table.
func (t Table) Validate() error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("%w: table %s is empty", ErrInvalidSchedule, t.Name)
	}

	var lower int64
	for i, bracket := range t.Brackets {
		if bracket.UpperBound <= lower {
			return fmt.Errorf("%w: table %s bracket %d bound %d does not increase",
				ErrInvalidSchedule, t.Name, i, bracket.UpperBound)
		}
		if bracket.Rate.IsNegative() {
			return fmt.Errorf("%w: table %s bracket %d has a negative rate", ErrInvalidSchedule, t.Name, i)
		}

		band := Band{Bracket: bracket, Index: i, LowerBound: lower}
		if floor := t.rawAmount(band, lower); floor.IsNegative() {
			return fmt.Errorf("%w: table %s bracket %d gives %s at its floor %d",
				ErrNegativeResult, t.Name, i, floor.String(), lower)
		}
		lower = bracket.UpperBound
	}

	if lower != Unbounded {
		return fmt.Errorf("%w: table %s last bracket must be unbounded", ErrInvalidSchedule, t.Name)
	}
	return nil
}

// Discontinuity is a bound where two adjacent rows of a table give different
// amounts for the same base.
type Discontinuity struct {
	Table string
	Bound int64
	Below decimal.Decimal
	Above decimal.Decimal
}

func (d Discontinuity) String() string {
	return fmt.Sprintf("table %s jumps at %d: %s below, %s above",
		d.Table, d.Bound, d.Below.String(), d.Above.String())
}

// Discontinuities lists the bounds where adjacent rows disagree. The
// statutory preferential table has one at 60M won.
func (t Table) Discontinuities() []Discontinuity {
	var gaps []Discontinuity
	var lower int64
	for i := 1; i < len(t.Brackets); i++ {
		bound := t.Brackets[i-1].UpperBound
		below := t.rawAmount(Band{Bracket: t.Brackets[i-1], Index: i - 1, LowerBound: lower}, bound)
		above := t.rawAmount(Band{Bracket: t.Brackets[i], Index: i, LowerBound: bound}, bound)
		if !below.Equal(above) {
			gaps = append(gaps, Discontinuity{Table: t.Name, Bound: bound, Below: below, Above: above})
		}
		lower = bound
	}
	return gaps
}

// Discontinuities lists the jumps of every table in the schedule.
func (s Schedule) Discontinuities() []Discontinuity {
	var gaps []Discontinuity
	for _, table := range s.Tables() {
		gaps = append(gaps, table.Discontinuities()...)
	}
	return gaps
}

// FairMarketRatio selects the ratio that reduces an assessed value to the
// taxable base.
func (s Schedule) FairMarketRatio(assessedValue int64, singleHome bool) decimal.Decimal {
	if !singleHome {
		return s.OtherOwnerRatio
	}
	for _, tier := range s.SingleHomeRatios {
		if assessedValue <= tier.UpTo {
			return tier.Ratio
		}
	}
	return s.SingleHomeRatios[len(s.SingleHomeRatios)-1].Ratio
}

// TaxableBase is floor(assessedValue * ratio); fractional won are dropped.
func TaxableBase(assessedValue int64, ratio decimal.Decimal) int64 {
	return mathutil.Truncate(mathutil.Won(assessedValue).Mul(ratio))
}

// Preferential reports whether the single-home preferential table applies.
func (s Schedule) Preferential(assessedValue int64, singleHome bool) bool {
	return singleHome && assessedValue <= s.PreferentialCeiling
}
