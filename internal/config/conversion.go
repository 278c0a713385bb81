package config

import (
	"fmt"

	"github.com/iwvelando/property-tax/pkg/tax"
	"github.com/iwvelando/property-tax/pkg/validation"
)

// ToTaxInput converts a configured scenario into engine input.
func (s Scenario) ToTaxInput() (tax.Input, error) {
	mode, err := tax.ParseFireLevyMode(s.FireLevyMode)
	if err != nil {
		return tax.Input{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	in := tax.Input{
		AssessedValue:             s.AssessedValue,
		SingleHouseholdSingleHome: s.SingleHouseholdSingleHome,
		PriorYearBaseTax:          s.PriorYearBaseTax,
		UrbanZone:                 s.InUrbanZone(),
		FireLevyMode:              mode,
		FireLevyBase:              s.FireLevyBase,
	}
	if err := in.Validate(); err != nil {
		return tax.Input{}, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return in, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		OutputFormat: c.Output.Format,
		View:         c.Output.View,
	}
	for _, scenario := range c.Scenarios {
		validator.Scenarios = append(validator.Scenarios, validation.ScenarioConfig{
			Name:             scenario.Name,
			Active:           scenario.Active,
			AssessedValue:    scenario.AssessedValue,
			PriorYearBaseTax: scenario.PriorYearBaseTax,
			FireLevyMode:     scenario.FireLevyMode,
			FireLevyBase:     scenario.FireLevyBase,
		})
	}
	return validator.ValidateAll()
}
