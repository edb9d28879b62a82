// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name?: string
	level: "low" | "high"
	items?: [...{id: string, count?: int & >=0}]
}
`

type testDoc struct {
	Name  string `json:"name"`
	Level string `json:"level"`
	Items []struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	} `json:"items"`
}

func TestDecode_JSONDocument(t *testing.T) {
	t.Parallel()

	data := []byte(`{"name": "demo", "level": "high", "items": [{"id": "a", "count": 2}]}`)
	res, err := Decode[testDoc]([]byte(testSchema), data, "#Doc", WithFilename("doc.json"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if res.Value.Name != "demo" || res.Value.Level != "high" {
		t.Errorf("Decode() = %+v", res.Value)
	}
	if len(res.Value.Items) != 1 || res.Value.Items[0].Count != 2 {
		t.Errorf("Items = %+v", res.Value.Items)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		wantSub string
	}{
		{"syntax", `{"level": `, nil, "doc.json"},
		{"constraint", `{"level": "medium"}`, nil, "level"},
		{"nested index", `{"level": "low", "items": [{"id": "a", "count": -1}]}`, nil, "items[0].count"},
		{"size", `{"level": "low"}`, []Option{WithMaxFileSize(4)}, "exceeds maximum"},
		{"missing required", `{}`, nil, "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := append([]Option{WithFilename("doc.json")}, tt.opts...)
			_, err := Decode[testDoc]([]byte(testSchema), []byte(tt.data), "#Doc", opts...)
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestDecode_NonConcreteAllowed(t *testing.T) {
	t.Parallel()

	schema := `#Doc: {level: *"low" | "high", name?: string}`
	res, err := Decode[testDoc]([]byte(schema), []byte(`{}`), "#Doc", WithConcrete(false))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if res.Value.Level != "low" {
		t.Errorf("Level = %q, want default %q", res.Value.Level, "low")
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"rules"}, "rules"},
		{[]string{"rules", "3", "action"}, "rules[3].action"},
		{[]string{"0", "x"}, "0.x"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.in); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
