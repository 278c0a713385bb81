// Package constants provides shared constants for the property-tax application.
package constants

import "time"

// Currency constants
const (
	// RoundingUnit is the smallest unit a levy is billed in; every levy is
	// truncated to a multiple of this many won.
	RoundingUnit = 10

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// InstallmentsPerYear is the number of installments the annual bill is
	// split into (July and September).
	InstallmentsPerYear = 2
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Display view constants
const (
	// ViewAnnual shows the full-year amounts
	ViewAnnual = "annual"

	// ViewQuarterly shows the per-installment amounts
	ViewQuarterly = "quarterly"
)

// Fire-safety levy rate modes as written in configuration files
const (
	FireLevyModeStandard   = "standard"
	FireLevyModeSimplified = "simplified"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultServerReadTimeout bounds how long a request body may take to arrive
	DefaultServerReadTimeout = 15 * time.Second

	// DefaultServerWriteTimeout bounds how long a response may take to write
	DefaultServerWriteTimeout = 30 * time.Second
)
