// Package tax computes the annual residential property tax bill for a single
// property: base property tax, urban-area levy, fire-safety levy and local
// education surtax, limited by the year-over-year burden cap.
package tax

import (
	"fmt"

	"github.com/iwvelando/property-tax/pkg/format"
	"github.com/iwvelando/property-tax/pkg/mathutil"
	"go.uber.org/zap"
)

// Line item names as printed on the bill.
const (
	ItemBaseTax         = "재산세 본세"
	ItemEducationSurtax = "지방교육세"
	ItemFireLevy        = "소방분 지역자원시설세"
	ItemUrbanAreaLevy   = "재산세 도시지역분"
)

// Calculator evaluates inputs against one rate schedule. It holds no state
// that changes between calls and is safe for concurrent use.
type Calculator struct {
	logger   *zap.Logger
	schedule Schedule
}

// NewCalculator validates the schedule and returns a calculator for it.
// If logger is nil, it will use a no-op logger.
func NewCalculator(logger *zap.Logger, schedule Schedule) (*Calculator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	for _, gap := range schedule.Discontinuities() {
		logger.Debug("rate table is discontinuous",
			zap.String("op", "tax.NewCalculator"),
			zap.String("table", gap.Table),
			zap.Int64("bound", gap.Bound),
			zap.String("below", gap.Below.String()),
			zap.String("above", gap.Above.String()),
		)
	}
	return &Calculator{logger: logger, schedule: schedule}, nil
}

// Schedule returns the schedule the calculator uses.
func (c *Calculator) Schedule() Schedule {
	return c.schedule
}

// Compute runs one input through the default schedule.
func Compute(in Input) (Result, error) {
	c, err := NewCalculator(nil, DefaultSchedule())
	if err != nil {
		return Result{}, err
	}
	return c.Compute(in)
}

// levies holds the phase-one amounts, before the burden cap.
type levies struct {
	baseTax  Assessment
	urban    int64
	fireBase int64
	fire     Assessment
}

// Compute produces the full report for in. Either the whole result is
// returned or an error is, never a partial result.
func (c *Calculator) Compute(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	mode, _ := ParseFireLevyMode(string(in.FireLevyMode))

	ratio := c.schedule.FairMarketRatio(in.AssessedValue, in.SingleHouseholdSingleHome)
	base := TaxableBase(in.AssessedValue, ratio)
	preferential := c.schedule.Preferential(in.AssessedValue, in.SingleHouseholdSingleHome)

	// Phase one: levies that depend only on the bases.
	lv, err := c.assessLevies(in, mode, base, preferential)
	if err != nil {
		return Result{}, err
	}

	// Phase two: the burden cap replaces the base tax when it binds.
	decision := ApplyBurdenCap(lv.baseTax.Amount, in.PriorYearBaseTax, c.schedule.BurdenCapRate)

	// Phase three: the surtax follows the displayed base tax.
	education := mathutil.ApplyRate(decision.BaseTax, c.schedule.EducationRate)
	educationBeforeCap := mathutil.ApplyRate(lv.baseTax.Amount, c.schedule.EducationRate)

	result := Result{
		AssessedValue:    in.AssessedValue,
		FairMarketRatio:  mathutil.Percent(ratio),
		TaxableBase:      base,
		PreferentialRate: preferential,
		BaseTaxBracket:   lv.baseTax.Band.Description,
		BaseTax:          decision.BaseTax,
		OriginalBaseTax:  lv.baseTax.Amount,
		UrbanAreaLevy:    lv.urban,
		FireLevyMode:     mode,
		FireLevyBase:     lv.fireBase,
		FireLevyBracket:  lv.fire.Band.Description,
		FireLevy:         lv.fire.Amount,
		EducationSurtax:  education,
		PriorYearBaseTax: in.PriorYearBaseTax,
		CapState:         decision.State,
		BurdenCap:        decision.Cap,
		CapApplied:       decision.Applied(),
		TotalBeforeCap:   lv.baseTax.Amount + lv.urban + lv.fire.Amount + educationBeforeCap,
		Total:            decision.BaseTax + lv.urban + lv.fire.Amount + education,
	}
	result.items = c.lineItems(result)

	c.logger.Debug("property tax computed",
		zap.String("op", "tax.Compute"),
		zap.Int64("taxableBase", result.TaxableBase),
		zap.Int64("fairMarketRatio", result.FairMarketRatio),
		zap.Bool("preferential", preferential),
		zap.String("capState", string(result.CapState)),
		zap.Int64("total", result.Total),
	)

	return result, nil
}

func (c *Calculator) assessLevies(in Input, mode FireLevyMode, base int64, preferential bool) (levies, error) {
	var lv levies
	var err error

	lv.baseTax, err = c.schedule.PropertyTable(preferential).Evaluate(base)
	if err != nil {
		return lv, fmt.Errorf("base property tax: %w", err)
	}

	if in.UrbanZone {
		lv.urban = mathutil.ApplyRate(base, c.schedule.UrbanRate)
	}

	lv.fireBase = base
	if in.FireLevyBase > 0 {
		lv.fireBase = in.FireLevyBase
	}
	lv.fire, err = c.schedule.FireTable(mode).Evaluate(lv.fireBase)
	if err != nil {
		return lv, fmt.Errorf("fire-safety levy: %w", err)
	}

	return lv, nil
}

// lineItems composes the annual itemized bill for a result.
func (c *Calculator) lineItems(r Result) []LineItem {
	baseTaxNote := "과세표준 × 일반세율"
	if r.PreferentialRate {
		baseTaxNote = "과세표준 × 특례세율"
	}
	if r.CapApplied {
		baseTaxNote = fmt.Sprintf("실 계산: %s, 세부담상한제 적용으로 전년세액: %s, 상한제 적용: %s",
			format.Won(r.OriginalBaseTax), format.Won(r.PriorYearBaseTax), format.Won(r.BaseTax))
	}

	fireNote := "과세표준 × 표준세율"
	if r.FireLevyMode == FireLevySimplified {
		fireNote = "과세표준 × 간이세율"
	}

	items := []LineItem{
		{Name: ItemBaseTax, Amount: r.BaseTax, Description: baseTaxNote},
		{
			Name:   ItemEducationSurtax,
			Amount: r.EducationSurtax,
			Description: fmt.Sprintf("재산세 본세(%s) × %s%%",
				format.Won(r.BaseTax), c.schedule.EducationRate.Shift(2).String()),
		},
		{Name: ItemFireLevy, Amount: r.FireLevy, Description: fireNote},
	}
	if r.UrbanAreaLevy > 0 {
		items = append(items, LineItem{
			Name:        ItemUrbanAreaLevy,
			Amount:      r.UrbanAreaLevy,
			Description: fmt.Sprintf("과세표준 × %s%%", c.schedule.UrbanRate.Shift(2).String()),
		})
	}
	return items
}
