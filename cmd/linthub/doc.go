// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for linthub.
//
// Every command builds an engine from the loaded configuration, runs one
// request against a project directory and renders the response as text or
// JSON.
package cmd
