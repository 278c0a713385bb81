// Package estimate runs the tax engine over every active scenario of a
// configuration.
package estimate

import (
	"fmt"

	"github.com/iwvelando/property-tax/internal/config"
	"github.com/iwvelando/property-tax/pkg/tax"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Estimate holds the assessment of one scenario.
type Estimate struct {
	Name   string     `json:"name"`
	Input  tax.Input  `json:"input"`
	Result tax.Result `json:"result"`
}

// GetEstimates assesses all active scenarios with the default schedule.
func GetEstimates(logger *zap.Logger, conf config.Configuration) ([]Estimate, error) {
	calculator, err := tax.NewCalculator(logger, tax.DefaultSchedule())
	if err != nil {
		return nil, err
	}
	return GetEstimatesWithCalculator(logger, calculator, conf)
}

// GetEstimatesWithCalculator assesses all active scenarios with a given
// calculator. It stops at the first scenario that cannot be assessed.
func GetEstimatesWithCalculator(logger *zap.Logger, calculator *tax.Calculator, conf config.Configuration) ([]Estimate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	active := lo.Filter(conf.Scenarios, func(scenario config.Scenario, _ int) bool {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "estimate.GetEstimates"),
			)
		}
		return scenario.Active
	})

	results := make([]Estimate, 0, len(active))
	for _, scenario := range active {
		in, err := scenario.ToTaxInput()
		if err != nil {
			return results, err
		}

		result, err := calculator.Compute(in)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		logger.Debug(fmt.Sprintf("assessed scenario %s", scenario.Name),
			zap.String("op", "estimate.GetEstimates"),
			zap.Int64("total", result.Total),
			zap.Bool("capApplied", result.CapApplied),
		)

		results = append(results, Estimate{Name: scenario.Name, Input: in, Result: result})
	}

	return results, nil
}
