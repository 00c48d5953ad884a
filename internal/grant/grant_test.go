package grant

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	src := Source{Niche: "PT", Name: "Foundation4PT", URL: "https://foundation4pt.org/scholarships/"}
	found := time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC)

	g := New(src, "Florence Kendall Scholarship", "https://foundation4pt.org/kendall", found)

	if g.Niche != "PT" {
		t.Errorf("Niche = %q, want PT", g.Niche)
	}
	if g.Source != "Foundation4PT" {
		t.Errorf("Source = %q, want Foundation4PT", g.Source)
	}
	if g.FoundAt != "2026-01-05T09:30:00Z" {
		t.Errorf("FoundAt = %q, want RFC3339 timestamp", g.FoundAt)
	}
	if g.Deadline != "" || g.HasAmount() || g.Summary != "" {
		t.Error("new grant should have no enrichment fields")
	}
}

func TestGrant_Key(t *testing.T) {
	a := &Grant{Title: "  Summer Research Grant ", Source: "AOTF"}
	b := &Grant{Title: "summer research grant", Source: "AOTF"}
	c := &Grant{Title: "summer research grant"}

	if a.Key() != b.Key() {
		t.Errorf("Key() differs for same normalized title: %q vs %q", a.Key(), b.Key())
	}
	if c.Key() != "summer research grant|" {
		t.Errorf("Key() with no source = %q, want trailing separator", c.Key())
	}
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        Amount
		wantPresent bool
	}{
		{"string", `{"amount":"25,000"}`, "25,000", true},
		{"number", `{"amount":5000}`, "5000", true},
		{"zero number", `{"amount":0}`, "", false},
		{"zero string", `{"amount":"0"}`, "", false},
		{"empty string", `{"amount":""}`, "", false},
		{"null", `{"amount":null}`, "", false},
		{"missing", `{}`, "", false},
		{"free text", `{"amount":"Up to $5,000"}`, "Up to $5,000", true},
		{"float", `{"amount":1500.5}`, "1500.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Grant
			if err := json.Unmarshal([]byte(tt.input), &g); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if g.Amount != tt.want {
				t.Errorf("Amount = %q, want %q", g.Amount, tt.want)
			}
			if g.HasAmount() != tt.wantPresent {
				t.Errorf("HasAmount() = %v, want %v", g.HasAmount(), tt.wantPresent)
			}
		})
	}
}

func TestAmount_MarshalOmitsAbsent(t *testing.T) {
	data, err := json.Marshal(&Grant{Title: "Test Grant", Link: "https://example.com"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if strings.Contains(string(data), "amount") {
		t.Errorf("absent amount should be omitted, got %s", data)
	}

	data, err = json.Marshal(&Grant{Title: "Test Grant", Amount: "1,000"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), `"amount":"1,000"`) {
		t.Errorf("amount should be written as a string, got %s", data)
	}
}

func TestAmount_Int(t *testing.T) {
	tests := []struct {
		in     Amount
		want   int
		wantOK bool
	}{
		{"25,000", 25000, true},
		{"5000", 5000, true},
		{"$1,500", 1500, true},
		{"Up to $5k", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, ok := tt.in.Int()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Int() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGrant_VerifiedDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-02-01T10:00:00Z", "2026-02-01"},
		{"2026-02-01T10:00:00.123456", "2026-02-01"},
		{"", ""},
		{"soon", "soon"},
	}

	for _, tt := range tests {
		g := &Grant{EnrichedAt: tt.in}
		if got := g.VerifiedDate(); got != tt.want {
			t.Errorf("VerifiedDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
