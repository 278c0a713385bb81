package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/property-tax/internal/config"
	"github.com/iwvelando/property-tax/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration file.
//
//	address: ":8080"
//	limits:
//	  maxUploadSize: 256K
//	  readTimeout: 15s
//	  writeTimeout: 30s
//	logging:
//	  level: info
type Config struct {
	Address string               `yaml:"address"`
	Limits  Limits               `yaml:"limits"`
	Logging config.LoggingConfig `yaml:"logging"`
}

// Limits bound what a single request may cost the server.
type Limits struct {
	MaxUploadSize ByteSize `yaml:"maxUploadSize"`
	ReadTimeout   Duration `yaml:"readTimeout"`
	WriteTimeout  Duration `yaml:"writeTimeout"`
}

// ByteSize is a byte count written with an optional K, M or G suffix.
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	size, err := ParseSize(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*b = ByteSize(size)
	return nil
}

// Duration is a time.Duration written as "15s", "1m" and so on.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Address: constants.DefaultServerAddress,
		Limits: Limits{
			MaxUploadSize: ByteSize(constants.DefaultMaxUploadSizeBytes),
			ReadTimeout:   Duration(constants.DefaultServerReadTimeout),
			WriteTimeout:  Duration(constants.DefaultServerWriteTimeout),
		},
	}
}

// LoadConfig reads the server configuration at path over the defaults. A
// missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects limits the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return errors.New("server config: address must not be empty")
	}
	if c.Limits.MaxUploadSize <= 0 {
		return fmt.Errorf("server config: maxUploadSize must be positive, got %d", c.Limits.MaxUploadSize)
	}
	if c.Limits.ReadTimeout <= 0 {
		return fmt.Errorf("server config: readTimeout must be positive, got %s", time.Duration(c.Limits.ReadTimeout))
	}
	if c.Limits.WriteTimeout <= 0 {
		return fmt.Errorf("server config: writeTimeout must be positive, got %s", time.Duration(c.Limits.WriteTimeout))
	}
	return nil
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize converts a size such as "256K" or "3MB" into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	digits := strings.TrimRightFunc(trimmed, func(r rune) bool {
		return r < '0' || r > '9'
	})
	unit := strings.TrimSpace(trimmed[len(digits):])

	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size %q: unsupported unit %q", value, unit)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size %q: must not be negative", value)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("invalid size %q: overflows int64", value)
	}
	return n * multiplier, nil
}
