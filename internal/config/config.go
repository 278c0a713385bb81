// Package config defines the data structures related to configuration and
// includes functions for loading and checking the scenario file.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/property-tax/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for property-tax.
type Configuration struct {
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
	Scenarios []Scenario    `yaml:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
	View   string `yaml:"view,omitempty"`   // annual, quarterly
}

// Scenario describes one property to assess. Several scenarios for the same
// home (e.g. with and without a prior-year amount) can be compared side by side.
type Scenario struct {
	Name                      string `yaml:"name"`
	Active                    bool   `yaml:"active"`
	AssessedValue             int64  `yaml:"assessedValue"`
	SingleHouseholdSingleHome bool   `yaml:"singleHouseholdSingleHome"`
	PriorYearBaseTax          int64  `yaml:"priorYearBaseTax,omitempty"`
	// UrbanZone defaults to true when omitted.
	UrbanZone    *bool  `yaml:"urbanZone,omitempty"`
	FireLevyMode string `yaml:"fireLevyMode,omitempty"` // standard, simplified
	FireLevyBase int64  `yaml:"fireLevyBase,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.applyDefaults()
	return &configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Output.View == "" {
		c.Output.View = constants.ViewAnnual
	}
	for i := range c.Scenarios {
		if c.Scenarios[i].FireLevyMode == "" {
			c.Scenarios[i].FireLevyMode = constants.FireLevyModeStandard
		}
	}
}

// ActiveScenarios returns the scenarios that should be assessed.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range c.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// InUrbanZone reports whether the urban-area levy applies.
func (s Scenario) InUrbanZone() bool {
	return s.UrbanZone == nil || *s.UrbanZone
}
