// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

var (
	// ErrInvalidLogLevel is the sentinel wrapped by InvalidLogLevelError.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is the sentinel wrapped by InvalidLogFormatError.
	ErrInvalidLogFormat = errors.New("invalid log format")
)

type (
	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// LogFormat selects the log handler's formatter.
	LogFormat string

	// InvalidLogLevelError is returned for an unrecognized LogLevel.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidLogFormatError is returned for an unrecognized LogFormat.
	InvalidLogFormatError struct {
		Value LogFormat
	}

	// Config holds the application configuration.
	Config struct {
		Analyzers AnalyzersConfig `json:"analyzers" mapstructure:"analyzers"`
		Cache     CacheConfig     `json:"cache" mapstructure:"cache"`
		Rulesets  RulesetsConfig  `json:"rulesets" mapstructure:"rulesets"`
		Log       LogConfig       `json:"log" mapstructure:"log"`
	}

	// AnalyzersConfig controls where rule-provider plugins are looked up.
	AnalyzersConfig struct {
		// InstallDir is checked right after LINTHUB_ANALYZERS_PATH.
		InstallDir string `json:"install_dir" mapstructure:"install_dir"`
		// CacheDir holds downloaded analyzer releases; empty means the
		// platform user cache directory.
		CacheDir string         `json:"cache_dir" mapstructure:"cache_dir"`
		Download DownloadConfig `json:"download" mapstructure:"download"`
	}

	// DownloadConfig controls the one-shot release download.
	DownloadConfig struct {
		Enabled bool   `json:"enabled" mapstructure:"enabled"`
		Owner   string `json:"owner" mapstructure:"owner"`
		Repo    string `json:"repo" mapstructure:"repo"`
		BaseURL string `json:"base_url" mapstructure:"base_url"`
	}

	// CacheConfig sizes the process-wide caches.
	CacheConfig struct {
		Libraries int `json:"libraries" mapstructure:"libraries"`
		Rulesets  int `json:"rulesets" mapstructure:"rulesets"`
	}

	// RulesetsConfig controls ruleset loading.
	RulesetsConfig struct {
		// FetchTimeout bounds each remote ruleset fetch.
		FetchTimeout time.Duration `json:"fetch_timeout" mapstructure:"fetch_timeout"`
	}

	// LogConfig configures the CLI logger.
	LogConfig struct {
		Level  LogLevel  `json:"level" mapstructure:"level"`
		Format LogFormat `json:"format" mapstructure:"format"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Analyzers: AnalyzersConfig{
			Download: DownloadConfig{
				Enabled: true,
				Owner:   "linthub",
				Repo:    "analyzers",
				BaseURL: "https://api.github.com",
			},
		},
		Cache: CacheConfig{
			Libraries: 64,
			Rulesets:  32,
		},
		Rulesets: RulesetsConfig{
			FetchTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

func (l LogLevel) String() string { return string(l) }

// IsValid reports whether l is a known level.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

func (f LogFormat) String() string { return string(f) }

// IsValid reports whether f is a known format.
func (f LogFormat) IsValid() (bool, []error) {
	switch f {
	case LogFormatText, LogFormatJSON:
		return true, nil
	default:
		return false, []error{&InvalidLogFormatError{Value: f}}
	}
}

func (e *InvalidLogFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (valid: text, json)", e.Value)
}

func (e *InvalidLogFormatError) Unwrap() error { return ErrInvalidLogFormat }

// IsValid validates the fields CUE cannot see after environment overrides.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if ok, fieldErrs := c.Log.Level.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := c.Log.Format.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if c.Cache.Libraries < 1 || c.Cache.Rulesets < 1 {
		errs = append(errs, fmt.Errorf("cache sizes must be positive (libraries=%d, rulesets=%d)", c.Cache.Libraries, c.Cache.Rulesets))
	}
	return len(errs) == 0, errs
}
