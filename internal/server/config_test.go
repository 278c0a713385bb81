package server

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/property-tax/pkg/constants"
)

func writeServerConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%q) error = %v", path, err)
		}
		if *cfg != *DefaultConfig() {
			t.Errorf("LoadConfig(%q) = %+v, expected defaults %+v", path, *cfg, *DefaultConfig())
		}
	}

	want := Limits{
		MaxUploadSize: ByteSize(constants.DefaultMaxUploadSizeBytes),
		ReadTimeout:   Duration(constants.DefaultServerReadTimeout),
		WriteTimeout:  Duration(constants.DefaultServerWriteTimeout),
	}
	if got := DefaultConfig().Limits; got != want {
		t.Errorf("default limits = %+v, expected %+v", got, want)
	}
}

func TestLoadConfigLimits(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     Limits
	}{
		{
			name: "all limits",
			contents: `limits:
  maxUploadSize: 2M
  readTimeout: 5s
  writeTimeout: 1m
`,
			want: Limits{MaxUploadSize: 2 << 20, ReadTimeout: Duration(5 * time.Second), WriteTimeout: Duration(time.Minute)},
		},
		{
			name: "partial limits keep defaults",
			contents: `limits:
  readTimeout: 2s
`,
			want: Limits{
				MaxUploadSize: ByteSize(constants.DefaultMaxUploadSizeBytes),
				ReadTimeout:   Duration(2 * time.Second),
				WriteTimeout:  Duration(constants.DefaultServerWriteTimeout),
			},
		},
		{
			name:     "empty file",
			contents: "",
			want:     DefaultConfig().Limits,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeServerConfig(t, tt.contents))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Limits != tt.want {
				t.Errorf("limits = %+v, expected %+v", cfg.Limits, tt.want)
			}
		})
	}
}

func TestLoadConfigAddressAndLogging(t *testing.T) {
	cfg, err := LoadConfig(writeServerConfig(t, `address: 127.0.0.1:9000
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Errorf("address = %s, expected 127.0.0.1:9000", cfg.Address)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" || cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		errPart  string
	}{
		{"bad size", "limits:\n  maxUploadSize: invalid\n", "unsupported unit"},
		{"overflowing size", "limits:\n  maxUploadSize: 17179869185G\n", "overflows"},
		{"zero size", "limits:\n  maxUploadSize: 0\n", "maxUploadSize must be positive"},
		{"bad timeout", "limits:\n  readTimeout: soon\n", "line 2"},
		{"negative timeout", "limits:\n  writeTimeout: -1s\n", "writeTimeout must be positive"},
		{"blank address", "address: \"  \"\n", "address"},
		{"top-level limit key", "maxUploadSize: 2M\n", "maxUploadSize"},
		{"unknown limit key", "limits:\n  idleTimeout: 5s\n", "idleTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeServerConfig(t, tt.contents))
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1024", 1024},
		{"512b", 512},
		{"256K", 256 << 10},
		{"1m", 1 << 20},
		{"3MB", 3 << 20},
		{"2G", 2 << 30},
		{"  4096   ", 4096},
		{"8 kb", 8 << 10},
		{"8589934591G", 8589934591 << 30},
		{"9223372036854775807", math.MaxInt64},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if err != nil {
			t.Errorf("ParseSize(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, expected %d", tt.input, got, tt.want)
		}
	}
}

func TestParseSizeRejects(t *testing.T) {
	for _, input := range []string{
		"",
		"abc",
		"1TB",
		"-5K",
		"8589934592G",
		"17179869185G",
		"9007199254740992M",
		"9223372036854775808",
	} {
		if got, err := ParseSize(input); err == nil {
			t.Errorf("ParseSize(%q) = %d, expected an error", input, got)
		}
	}
}
