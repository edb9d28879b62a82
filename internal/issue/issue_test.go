// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestCatalogIsComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(UnknownFileId) {
		t.Fatalf("catalog has %d entries, want %d", len(values), UnknownFileId)
	}
	for i, v := range values {
		if v.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, v.Id(), i+1)
		}
		if strings.TrimSpace(string(v.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", v.Id())
		}
		if len(v.DocLinks()) == 0 {
			t.Errorf("issue %d has no doc links", v.Id())
		}
	}
}

func TestGetUnknown(t *testing.T) {
	t.Parallel()

	if Get(0) != nil || Get(UnknownFileId+1) != nil {
		t.Error("Get() should return nil for ids outside the catalog")
	}
}

func TestRenderIncludesLinks(t *testing.T) {
	t.Parallel()

	out, err := Get(FixNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "linthub fixes --json") {
		t.Errorf("Render() missing command example:\n%s", out)
	}
	if !strings.Contains(out, "linthub.dev/docs/fixes") {
		t.Errorf("Render() missing doc link:\n%s", out)
	}
}
