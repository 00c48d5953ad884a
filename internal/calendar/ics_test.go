package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestGenerateDeadlineICS(t *testing.T) {
	g := &grant.Grant{
		Title:    "Clinical Research Grant",
		Link:     "https://www.ashfoundation.org/apply/crg",
		Source:   "ASHFoundation",
		Deadline: "April 22, 2026",
		Amount:   "75,000",
	}
	ev := Event{
		UID:     "clinical-research-grant@grantflow.vercel.app",
		PageURL: "https://grantflow.vercel.app/grants/clinical-research-grant.html",
	}

	ics, ok := GenerateDeadlineICS(g, ev, "GrantFlow", testNow)
	if !ok {
		t.Fatal("expected an ICS for a dated deadline")
	}

	// Check required ICS fields
	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//GrantFlow//grantflow//EN",
		"BEGIN:VEVENT",
		"UID:clinical-research-grant@grantflow.vercel.app",
		"DTSTAMP:20260301T100000Z",
		"DTSTART;VALUE=DATE:20260422",
		"DTEND;VALUE=DATE:20260423",
		"SUMMARY:Deadline: Clinical Research Grant",
		"DESCRIPTION:Source: ASHFoundation\\nAmount: 75\\,000",
		"URL:https://www.ashfoundation.org/apply/crg",
		"TRIGGER:-P7D",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	// Check that lines end with \r\n
	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateDeadlineICS_NoDate(t *testing.T) {
	tests := []struct {
		name     string
		deadline string
	}{
		{"rolling", "Rolling"},
		{"empty", ""},
		{"unparseable", "Spring 2026"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &grant.Grant{Title: "Grant", Deadline: tt.deadline}
			ics, ok := GenerateDeadlineICS(g, Event{UID: "x"}, "", testNow)
			if ok || ics != "" {
				t.Errorf("expected no ICS for deadline %q", tt.deadline)
			}
		})
	}
}

func TestGenerateDeadlineICS_SpecialCharacters(t *testing.T) {
	g := &grant.Grant{
		Title:    "Grant; With, Special\\Characters",
		Deadline: "2026-05-01",
	}

	ics, _ := GenerateDeadlineICS(g, Event{UID: "x"}, "", testNow)

	if !strings.Contains(ics, "SUMMARY:Deadline: Grant\\; With\\, Special\\\\Characters") {
		t.Errorf("Special characters should be escaped in SUMMARY:\n%s", ics)
	}
}

func TestGenerateDeadlineICS_LineFolding(t *testing.T) {
	g := &grant.Grant{
		Title:       "Long Grant",
		Deadline:    "1/15/2027",
		Eligibility: strings.Repeat("Licensed clinicians é ", 10),
	}

	ics, ok := GenerateDeadlineICS(g, Event{UID: "x"}, "", testNow)
	if !ok {
		t.Fatal("expected ICS")
	}

	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		if len(line) > maxLineOctets {
			t.Errorf("line exceeds %d octets: %q", maxLineOctets, line)
		}
	}
	if !strings.Contains(ics, "\r\n ") {
		t.Error("long lines should be folded")
	}
}

func TestGenerateDeadlinesICS(t *testing.T) {
	entries := []Entry{
		{Grant: &grant.Grant{Title: "A", Deadline: "March 15, 2026"}, Event: Event{UID: "a@test"}},
		{Grant: &grant.Grant{Title: "B", Deadline: "Rolling"}, Event: Event{UID: "b@test"}},
		{Grant: &grant.Grant{Title: "C", Deadline: "2026-06-01"}, Event: Event{UID: "c@test"}},
	}

	ics := GenerateDeadlinesICS(entries, "GrantFlow", "GrantFlow Deadlines", testNow)

	if !strings.Contains(ics, "X-WR-CALNAME:GrantFlow Deadlines") {
		t.Error("Missing calendar name")
	}
	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("Expected 2 BEGIN:VEVENT, got %d", got)
	}
	if strings.Contains(ics, "UID:b@test") {
		t.Error("rolling grant should be skipped")
	}
	if strings.Count(ics, "BEGIN:VCALENDAR") != 1 || strings.Count(ics, "END:VCALENDAR") != 1 {
		t.Error("expected a single calendar wrapper")
	}
}

func TestGenerateDeadlinesICS_Empty(t *testing.T) {
	entries := []Entry{{Grant: &grant.Grant{Title: "B", Deadline: "Rolling"}}}
	if ics := GenerateDeadlinesICS(entries, "", "Test", testNow); ics != "" {
		t.Error("no dated entries should return empty string")
	}
}

func TestFormatICSTime(t *testing.T) {
	// Test time formatting
	testTime := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	formatted := formatICSTime(testTime)

	expected := "20260315T143000Z"
	if formatted != expected {
		t.Errorf("formatICSTime() = %q, want %q", formatted, expected)
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text with, comma", "Text with\\, comma"},
		{"Text with; semicolon", "Text with\\; semicolon"},
		{"Text with\\backslash", "Text with\\\\backslash"},
		{"Text with\nnewline", "Text with\\nnewline"},
		{"All, special; chars\\\n", "All\\, special\\; chars\\\\\\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeICS(tt.input)
			if got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
