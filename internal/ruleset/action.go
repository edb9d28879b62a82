// SPDX-License-Identifier: MPL-2.0

package ruleset

import (
	"maps"
	"strings"

	"github.com/linthub/linthub/pkg/ruleapi"
)

// Wildcard is the ActionMap key holding a ruleset's general action.
const Wildcard = "*"

const (
	// ActionDefault keeps the rule's intrinsic severity.
	ActionDefault Action = iota
	ActionError
	ActionWarning
	ActionInfo
	ActionHidden
	// ActionNone suppresses the rule.
	ActionNone
)

type (
	// Action is a ruleset override for a rule.
	Action int

	// ActionMap maps rule ids, or Wildcard, to actions. A nil map means no
	// ruleset applies; a non-nil empty map is an empty ruleset.
	ActionMap map[string]Action
)

var actionNames = [...]string{"default", "error", "warning", "info", "hidden", "none"}

// ParseAction parses an action string case-insensitively. ok is false for
// unknown strings, which callers treat as ActionDefault.
func ParseAction(s string) (a Action, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionNames {
		if s == name {
			return Action(i), true
		}
	}
	return ActionDefault, false
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "default"
	}
	return actionNames[a]
}

// MarshalText encodes a as its lowercase name.
func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Severity maps an overriding action to a severity. ok is false for
// ActionDefault and ActionNone, which do not name a severity.
func (a Action) Severity() (s ruleapi.Severity, ok bool) {
	switch a {
	case ActionError:
		return ruleapi.SeverityError, true
	case ActionWarning:
		return ruleapi.SeverityWarning, true
	case ActionInfo:
		return ruleapi.SeverityInfo, true
	case ActionHidden:
		return ruleapi.SeverityHidden, true
	default:
		return 0, false
	}
}

// Lookup returns the action for id, falling back to the wildcard entry.
func (m ActionMap) Lookup(id string) (Action, bool) {
	if a, ok := m[id]; ok {
		return a, true
	}
	a, ok := m[Wildcard]
	return a, ok
}

// Effective returns the severity a diagnostic of rule id reports with, given
// its intrinsic severity. keep is false when the rule is suppressed.
func (m ActionMap) Effective(id string, intrinsic ruleapi.Severity) (s ruleapi.Severity, keep bool) {
	a, ok := m.Lookup(id)
	if !ok {
		return intrinsic, true
	}
	if a == ActionNone {
		return 0, false
	}
	if s, ok := a.Severity(); ok {
		return s, true
	}
	return intrinsic, true
}

// Clone returns a copy; the clone of nil is nil.
func (m ActionMap) Clone() ActionMap {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
