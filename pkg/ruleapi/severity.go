// SPDX-License-Identifier: MPL-2.0

package ruleapi

import (
	"fmt"
	"strings"
)

// Severity is the reporting level of a diagnostic. Values are ordered so that
// a numeric comparison implements Hidden < Info < Warning < Error; the zero
// value is the lowest level, which makes an unset severity floor a no-op.
type Severity int

const (
	// SeverityHidden diagnostics are produced but not normally surfaced.
	SeverityHidden Severity = iota
	// SeverityInfo diagnostics are suggestions.
	SeverityInfo
	// SeverityWarning diagnostics should be addressed.
	SeverityWarning
	// SeverityError diagnostics must be addressed.
	SeverityError
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityHidden:
		return "hidden"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// IsValid reports whether s is one of the declared severities.
func (s Severity) IsValid() bool {
	return s >= SeverityHidden && s <= SeverityError
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity parses a case-insensitive severity name.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hidden":
		return SeverityHidden, nil
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityHidden, fmt.Errorf("unknown severity %q", s)
	}
}
