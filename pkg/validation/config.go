// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
)

// ConfigValidator checks the scenario list for likely mistakes. It only
// produces warnings; hard errors surface when a scenario is assessed.
type ConfigValidator struct {
	OutputFormat string
	View         string
	Scenarios    []ScenarioConfig
}

// ScenarioConfig is the part of a scenario the validator looks at.
type ScenarioConfig struct {
	Name             string
	Active           bool
	AssessedValue    int64
	PriorYearBaseTax int64
	FireLevyMode     string
	FireLevyBase     int64
}

// ValidateScenario returns warnings for a single active scenario.
func ValidateScenario(scenario ScenarioConfig) []string {
	var warnings []string

	if scenario.AssessedValue <= 0 {
		warnings = append(warnings, fmt.Sprintf("Scenario '%s' has no assessed value and cannot be assessed",
			scenario.Name))
	}

	if scenario.AssessedValue > 0 && scenario.PriorYearBaseTax > scenario.AssessedValue {
		warnings = append(warnings, fmt.Sprintf("Scenario '%s' prior-year base tax exceeds the assessed value (%d > %d)",
			scenario.Name, scenario.PriorYearBaseTax, scenario.AssessedValue))
	}

	if scenario.AssessedValue > 0 && scenario.FireLevyBase > scenario.AssessedValue {
		warnings = append(warnings, fmt.Sprintf("Scenario '%s' fire levy base exceeds the assessed value (%d > %d)",
			scenario.Name, scenario.FireLevyBase, scenario.AssessedValue))
	}

	if err := ValidateFireLevyMode(scenario.FireLevyMode); err != nil {
		warnings = append(warnings, fmt.Sprintf("Scenario '%s': %v", scenario.Name, err))
	}

	return warnings
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if cv.OutputFormat != "" {
		if err := ValidateOutputFormat(cv.OutputFormat); err != nil {
			warnings = append(warnings, fmt.Sprintf("Output: %v", err))
		}
	}
	if cv.View != "" {
		if err := ValidateView(cv.View); err != nil {
			warnings = append(warnings, fmt.Sprintf("Output: %v", err))
		}
	}

	seen := make(map[string]bool)
	active := 0
	for _, scenario := range cv.Scenarios {
		if !scenario.Active {
			continue
		}
		active++

		if scenario.Name == "" {
			warnings = append(warnings, "An active scenario has no name")
		} else if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", scenario.Name))
		}
		seen[scenario.Name] = true

		warnings = append(warnings, ValidateScenario(scenario)...)
	}

	if active == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be assessed")
	}

	return warnings
}
