// SPDX-License-Identifier: MPL-2.0

package ruleset

import (
	_ "embed"

	"github.com/linthub/linthub/internal/cueutil"
)

//go:embed ruleset_schema.cue
var rulesetSchema []byte

type (
	// Document is one ruleset file.
	Document struct {
		Name          string    `json:"name"`
		Description   string    `json:"description"`
		GeneralAction string    `json:"generalAction"`
		Includes      []Include `json:"includedRuleSets"`
		Rules         []Rule    `json:"rules"`
	}

	// Include references another ruleset. Action is informational only.
	Include struct {
		Path   string `json:"path"`
		Action string `json:"action"`
	}

	// Rule is a local override for one rule id.
	Rule struct {
		ID            string `json:"id"`
		Action        string `json:"action"`
		Justification string `json:"justification"`
	}
)

// ParseDocument validates data against the ruleset schema and decodes it.
// name is used in error messages.
func ParseDocument(data []byte, name string) (*Document, error) {
	res, err := cueutil.Decode[Document](rulesetSchema, data, "#Ruleset", cueutil.WithFilename(name))
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}
