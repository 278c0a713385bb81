package tax

import (
	"github.com/iwvelando/property-tax/pkg/constants"
	"github.com/iwvelando/property-tax/pkg/mathutil"
	"github.com/samber/lo"
)

// View selects full-year or per-installment amounts.
type View string

const (
	Annual    View = constants.ViewAnnual
	Quarterly View = constants.ViewQuarterly
)

// LineItem is one levy on the itemized bill.
type LineItem struct {
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Result is the full report for one Input. Levy fields hold the displayed
// (post-cap) values; OriginalBaseTax and TotalBeforeCap keep the pre-cap view.
type Result struct {
	AssessedValue    int64 `json:"assessedValue"`
	FairMarketRatio  int64 `json:"fairMarketRatio"`
	TaxableBase      int64 `json:"taxableBase"`
	PreferentialRate bool  `json:"preferentialRate"`

	BaseTaxBracket  string `json:"baseTaxBracket"`
	BaseTax         int64  `json:"baseTax"`
	OriginalBaseTax int64  `json:"originalBaseTax"`
	UrbanAreaLevy   int64  `json:"urbanAreaLevy"`

	FireLevyMode    FireLevyMode `json:"fireLevyMode"`
	FireLevyBase    int64        `json:"fireLevyBase"`
	FireLevyBracket string       `json:"fireLevyBracket"`
	FireLevy        int64        `json:"fireLevy"`

	EducationSurtax int64 `json:"educationSurtax"`

	PriorYearBaseTax int64          `json:"priorYearBaseTax"`
	CapState         CapState       `json:"capState"`
	BurdenCap        OptionalAmount `json:"burdenCap"`
	CapApplied       bool           `json:"capApplied"`

	TotalBeforeCap int64 `json:"totalBeforeCap"`
	Total          int64 `json:"total"`

	items []LineItem
}

// Items returns a copy of the annual itemized bill.
func (r Result) Items() []LineItem {
	return append([]LineItem(nil), r.items...)
}

// Amounts are the four levies and their sum for one view.
type Amounts struct {
	BaseTax         int64 `json:"baseTax"`
	UrbanAreaLevy   int64 `json:"urbanAreaLevy"`
	FireLevy        int64 `json:"fireLevy"`
	EducationSurtax int64 `json:"educationSurtax"`
	Total           int64 `json:"total"`
}

// Annual returns the displayed annual levies.
func (r Result) Annual() Amounts {
	return Amounts{
		BaseTax:         r.BaseTax,
		UrbanAreaLevy:   r.UrbanAreaLevy,
		FireLevy:        r.FireLevy,
		EducationSurtax: r.EducationSurtax,
		Total:           r.Total,
	}
}

// Quarterly returns the per-installment levies. Each levy is halved and
// floored to ten won independently, so the installment total may fall a few
// tens of won short of half the annual total.
func (r Result) Quarterly() Amounts {
	a := Amounts{
		BaseTax:         mathutil.Halve(r.BaseTax),
		UrbanAreaLevy:   mathutil.Halve(r.UrbanAreaLevy),
		FireLevy:        mathutil.Halve(r.FireLevy),
		EducationSurtax: mathutil.Halve(r.EducationSurtax),
	}
	a.Total = a.BaseTax + a.UrbanAreaLevy + a.FireLevy + a.EducationSurtax
	return a
}

// Amounts returns the levies for a view; anything but Quarterly is annual.
func (r Result) Amounts(view View) Amounts {
	if view == Quarterly {
		return r.Quarterly()
	}
	return r.Annual()
}

// Breakdown returns the itemized bill for a view, dropping zero-amount items.
func (r Result) Breakdown(view View) []LineItem {
	items := lo.Map(r.items, func(item LineItem, _ int) LineItem {
		if view == Quarterly {
			item.Amount = mathutil.Halve(item.Amount)
		}
		return item
	})
	return lo.Filter(items, func(item LineItem, _ int) bool {
		return item.Amount > 0
	})
}

// BreakdownTotal sums the items of a breakdown.
func BreakdownTotal(items []LineItem) int64 {
	return lo.SumBy(items, func(item LineItem) int64 {
		return item.Amount
	})
}
