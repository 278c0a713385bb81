package tax

import (
	"fmt"
	"strings"

	"github.com/iwvelando/property-tax/pkg/constants"
)

// MaxAmount is the largest won amount an Input may carry (10^15 won). Every
// product the engine forms from it fits in an int64.
const MaxAmount int64 = 1_000_000_000_000_000

// FireLevyMode selects the fire-safety levy rate table.
type FireLevyMode string

const (
	FireLevyStandard   FireLevyMode = constants.FireLevyModeStandard
	FireLevySimplified FireLevyMode = constants.FireLevyModeSimplified
)

// ParseFireLevyMode accepts "standard" or "simplified" in any case. An empty
// string means standard.
func ParseFireLevyMode(value string) (FireLevyMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", constants.FireLevyModeStandard:
		return FireLevyStandard, nil
	case constants.FireLevyModeSimplified:
		return FireLevySimplified, nil
	default:
		return "", fmt.Errorf("%w: unknown fire levy mode %q", ErrInvalidInput, value)
	}
}

// Input describes one property for one tax year. It is passed by value and
// never retained.
type Input struct {
	AssessedValue             int64        `json:"assessedValue"`
	SingleHouseholdSingleHome bool         `json:"singleHouseholdSingleHome"`
	PriorYearBaseTax          int64        `json:"priorYearBaseTax"`
	UrbanZone                 bool         `json:"urbanZone"`
	FireLevyMode              FireLevyMode `json:"fireLevyMode"`

	// FireLevyBase overrides the base the fire levy is computed on. Zero
	// means not provided and the taxable base is reused.
	FireLevyBase int64 `json:"fireLevyBase,omitempty"`
}

// Validate rejects inputs the engine cannot assess.
func (in Input) Validate() error {
	if in.AssessedValue <= 0 {
		return fmt.Errorf("%w: assessed value must be positive, got %d", ErrInvalidInput, in.AssessedValue)
	}
	if in.PriorYearBaseTax < 0 {
		return fmt.Errorf("%w: prior-year base tax must not be negative, got %d", ErrInvalidInput, in.PriorYearBaseTax)
	}
	if in.FireLevyBase < 0 {
		return fmt.Errorf("%w: fire levy base must not be negative, got %d", ErrInvalidInput, in.FireLevyBase)
	}
	for _, field := range []struct {
		name   string
		amount int64
	}{
		{"assessed value", in.AssessedValue},
		{"prior-year base tax", in.PriorYearBaseTax},
		{"fire levy base", in.FireLevyBase},
	} {
		if field.amount > MaxAmount {
			return fmt.Errorf("%w: %s %d exceeds the ceiling of %d", ErrInvalidInput, field.name, field.amount, MaxAmount)
		}
	}
	if _, err := ParseFireLevyMode(string(in.FireLevyMode)); err != nil {
		return err
	}
	return nil
}
