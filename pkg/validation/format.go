// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/property-tax/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateView checks if the display view is annual or quarterly.
func ValidateView(view string) error {
	if view != constants.ViewAnnual && view != constants.ViewQuarterly {
		return fmt.Errorf("expected view of %s or %s, got %s",
			constants.ViewAnnual, constants.ViewQuarterly, view)
	}
	return nil
}

// ValidateFireLevyMode checks if the fire levy mode is standard or simplified.
// An empty mode is accepted and means standard.
func ValidateFireLevyMode(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", constants.FireLevyModeStandard, constants.FireLevyModeSimplified:
		return nil
	}
	return fmt.Errorf("expected fire levy mode of %s or %s, got %s",
		constants.FireLevyModeStandard, constants.FireLevyModeSimplified, mode)
}
