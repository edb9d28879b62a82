// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that need files on disk or a
// compiled unit, failing the test instead of returning errors.
//
// WriteModule lays out a throwaway Go module; LoadUnit additionally
// type-checks it into a workspace.Unit.
package testutil
