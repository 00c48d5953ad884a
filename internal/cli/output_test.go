package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

func sampleResult() *OutputResult {
	grants := []*grant.Grant{
		{
			Title:       "Speech Research Grant",
			Link:        "https://a.example/1",
			Source:      "ASHFoundation",
			Niche:       "SLP",
			Amount:      "25000",
			Deadline:    "April 15, 2026",
			Eligibility: "Early-career researchers",
			TLDR:        "Funds early research.",
		},
		{Title: "Untitled Niche Award", Link: "https://b.example/2"},
	}
	return &OutputResult{
		GeneratedAt: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Sort:        SortDefault,
		Count:       len(grants),
		Grants:      grants,
	}
}

func TestWriteOutput_Text(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "compact",
			contains: []string{
				"[SLP] Speech Research Grant",
				"Amount: $25,000 | Deadline: April 15, 2026",
				"[-] Untitled Niche Award",
				"Amount: See details | Deadline: Not specified",
				"Total: 2 grants",
			},
			excludes: []string{"Link:", "TL;DR:"},
		},
		{
			name:    "verbose",
			verbose: true,
			contains: []string{
				"Source: ASHFoundation",
				"Link: https://a.example/1",
				"Eligibility: Early-career researchers",
				"TL;DR: Funds early research.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteOutput(&buf, sampleResult(), FormatText, tt.verbose); err != nil {
				t.Fatalf("WriteOutput() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("output should not contain %q:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestWriteOutput_Empty(t *testing.T) {
	for _, format := range []OutputFormat{FormatText, FormatTable} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteOutput(&buf, &OutputResult{}, format, false); err != nil {
				t.Fatalf("WriteOutput() error = %v", err)
			}
			if got := buf.String(); got != "No grants found.\n" {
				t.Errorf("output = %q", got)
			}
		})
	}
}

func TestWriteOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleResult(), FormatJSON, false); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["count"] != float64(2) {
		t.Errorf("count = %v, want 2", decoded["count"])
	}
	if decoded["generated_at"] != "2026-03-01T00:00:00Z" {
		t.Errorf("generated_at = %v", decoded["generated_at"])
	}
	if _, ok := decoded["filter"]; ok {
		t.Error("empty filter should be omitted")
	}
}

func TestWriteOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleResult(), FormatTable, true); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"NICHE", "TITLE", "LINK", "Speech Research Grant", "$25,000", "https://b.example/2", "TOTAL: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, sampleResult(), OutputFormat("xml"), false); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"text", "JSON", " table "} {
		if _, err := ParseOutputFormat(s); err != nil {
			t.Errorf("ParseOutputFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseOutputFormat("csv"); err == nil {
		t.Error("expected an error for csv")
	}
}
