// SPDX-License-Identifier: MPL-2.0

// Package config loads linthub's user configuration.
//
// The configuration file is CUE (config.cue in the platform config directory),
// validated against an embedded #Config schema and merged over defaults with
// viper. LINTHUB_* environment variables override file values.
package config
