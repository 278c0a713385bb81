package main

import (
	"flag"
	"fmt"

	"github.com/iwvelando/property-tax/internal/config"
	"github.com/iwvelando/property-tax/internal/estimate"
	"github.com/iwvelando/property-tax/pkg/constants"
	"github.com/iwvelando/property-tax/pkg/logging"
	"github.com/iwvelando/property-tax/pkg/output"
	"github.com/iwvelando/property-tax/pkg/tax"
	"github.com/iwvelando/property-tax/pkg/validation"
	"go.uber.org/zap"
)

// adHocScenario builds a one-scenario configuration from the command line.
func adHocScenario(assessedValue int64, singleHome bool, priorYearTax int64, urban bool, fireMode string, fireBase int64) *config.Configuration {
	return &config.Configuration{
		Output: config.OutputConfig{
			Format: constants.OutputFormatPretty,
			View:   constants.ViewAnnual,
		},
		Scenarios: []config.Scenario{
			{
				Name:                      "command line",
				Active:                    true,
				AssessedValue:             assessedValue,
				SingleHouseholdSingleHome: singleHome,
				PriorYearBaseTax:          priorYearTax,
				UrbanZone:                 &urban,
				FireLevyMode:              fireMode,
				FireLevyBase:              fireBase,
			},
		},
	}
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	viewFlag := flag.String("view", "", "amount view override: annual, quarterly")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")

	// Ad-hoc assessment; when set the configuration file is not read
	assessedValue := flag.Int64("assessed-value", 0, "assess a single property with this official assessed value in won")
	singleHome := flag.Bool("single-home", false, "owner is a single household with a single home")
	priorYearTax := flag.Int64("prior-year-tax", 0, "prior-year base tax in won for the burden cap")
	urban := flag.Bool("urban", true, "property lies in an urban planning zone")
	fireMode := flag.String("fire-mode", constants.FireLevyModeStandard, "fire levy table: standard, simplified")
	fireBase := flag.Int64("fire-base", 0, "building standard value in won used as the fire levy base")
	flag.Parse()

	var conf *config.Configuration
	if *assessedValue != 0 {
		conf = adHocScenario(*assessedValue, *singleHome, *priorYearTax, *urban, *fireMode, *fireBase)
	} else {
		var err error
		conf, err = config.LoadConfiguration(*configLocation)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
			return
		}
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(logging.Config(conf.Logging), *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format and view (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	view := conf.Output.View
	if *viewFlag != "" {
		view = *viewFlag
	}
	if view == "" {
		view = constants.ViewAnnual
	}
	if err := validation.ValidateView(view); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	results, err := estimate.GetEstimates(logger, *conf)
	if err != nil {
		logger.Fatal("failed to compute estimates",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(results, tax.View(view))
	case constants.OutputFormatCSV:
		output.CsvFormat(results, tax.View(view))
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(results, tax.View(view)); err != nil {
			logger.Fatal("failed to write JSON output",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
