// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/linthub/linthub/pkg/ruleapi"
)

// Color palette shared by all CLI output. Tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple, used for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red, used for error-severity results and failures.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber, used for warning-severity results.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue, used for rule ids and paths.
	ColorHighlight = lipgloss.Color("#3B82F6")

	// ColorVerbose is light gray, used for info-severity results.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and error-severity results.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warnings and warning-severity results.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// RuleStyle is for rule ids, fix keys and file paths.
	RuleStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// InfoStyle is for info-severity results and supplementary details.
	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)
)

// severityStyle returns the style a result of severity s is printed with.
func severityStyle(s ruleapi.Severity) lipgloss.Style {
	switch s {
	case ruleapi.SeverityError:
		return ErrorStyle
	case ruleapi.SeverityWarning:
		return WarningStyle
	case ruleapi.SeverityInfo:
		return InfoStyle
	default:
		return SubtitleStyle
	}
}
