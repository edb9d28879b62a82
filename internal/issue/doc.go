// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown guidance
// rendered for users when linthub cannot do what was asked.
package issue
