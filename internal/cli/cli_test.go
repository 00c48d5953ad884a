package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pfrederiksen/grantflow/internal/grant"
	"github.com/pfrederiksen/grantflow/internal/storage"
)

const listingPage = `<html><body>
<nav><a href="/">Home</a></nav>
<ul>
  <li><a href="/detail">Early Career Research Grant</a></li>
  <li><a href="/contact">Contact us</a></li>
</ul>
</body></html>`

const detailPage = `<html><head>
<meta name="description" content="Supports early career clinicians starting a research program.">
</head><body>
<p>Application deadline: April 15, 2027</p>
<p>Awards of up to $5,000 are available.</p>
<p>Eligibility: licensed speech-language pathologists in their first five years</p>
</body></html>`

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingPage))
	})
	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailPage))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type testEnv struct {
	dir    string
	config string
}

func (e testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func newTestEnv(t *testing.T, sourceURL string) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{dir: dir, config: filepath.Join(dir, "grantflow.yaml")}

	cfg := fmt.Sprintf(`site:
  url: https://grants.example.org
  output_dir: %s
paths:
  raw: %s
  enriched: %s
  family: %s
  resources: %s
fetch:
  listing_timeout: 5s
  detail_timeout: 5s
sources:
  - niche: SLP
    name: Test Foundation
    url: %s
`, env.path("site"), env.path("raw.json"), env.path("enriched.json"),
		env.path("family.json"), env.path("resources.json"), sourceURL)

	if err := os.WriteFile(env.config, []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return env
}

func execute(t *testing.T, env testEnv, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--config", env.config}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), err
}

func writeGrants(t *testing.T, path string, grants []*grant.Grant) {
	t.Helper()
	if err := storage.SaveGrants(path, grants); err != nil {
		t.Fatalf("SaveGrants() error = %v", err)
	}
}

func TestRunCommand(t *testing.T) {
	server := newSiteServer(t)
	env := newTestEnv(t, server.URL+"/listing")

	if _, err := execute(t, env, "run"); err != nil {
		t.Fatalf("run error = %v", err)
	}

	raw, err := storage.LoadGrants(env.path("raw.json"))
	if err != nil {
		t.Fatalf("loading raw grants: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("raw grants = %d, want 1", len(raw))
	}
	if raw[0].Link != server.URL+"/detail" {
		t.Errorf("raw link = %q", raw[0].Link)
	}

	enriched, err := storage.LoadGrants(env.path("enriched.json"))
	if err != nil {
		t.Fatalf("loading enriched grants: %v", err)
	}
	g := enriched[0]
	if g.Deadline != "April 15, 2027" {
		t.Errorf("deadline = %q, want %q", g.Deadline, "April 15, 2027")
	}
	if !g.HasAmount() {
		t.Error("expected an amount")
	}
	if g.EnrichedAt == "" {
		t.Error("expected enriched_at to be set")
	}

	for _, name := range []string{
		"index.html",
		"sitemap.xml",
		"robots.txt",
		"grants/early-career-research-grant.html",
		"grants/early-career-research-grant.ics",
	} {
		if _, err := os.Stat(filepath.Join(env.path("site"), name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.path("site"), "resources.html")); !os.IsNotExist(err) {
		t.Error("resources.html should not be written without resources")
	}
}

func TestBuildCommand_MissingEnriched(t *testing.T) {
	env := newTestEnv(t, "https://example.org/listing")

	_, err := execute(t, env, "build")
	if !errors.Is(err, storage.ErrMissingInput) {
		t.Fatalf("build error = %v, want ErrMissingInput", err)
	}
	if _, statErr := os.Stat(env.path("site")); !os.IsNotExist(statErr) {
		t.Error("no output should be written when a mandatory input is missing")
	}
}

func TestEnrichCommand_MissingRaw(t *testing.T) {
	env := newTestEnv(t, "https://example.org/listing")

	_, err := execute(t, env, "enrich")
	if !errors.Is(err, storage.ErrMissingInput) {
		t.Fatalf("enrich error = %v, want ErrMissingInput", err)
	}
}

func TestBuildCommand_MergesCuratedAndResources(t *testing.T) {
	env := newTestEnv(t, "https://example.org/listing")

	writeGrants(t, env.path("enriched.json"), []*grant.Grant{
		{Title: "Clinical Fellowship", Link: "https://a.example/fellowship", Source: "A", Niche: "OT"},
		{Title: "How to Apply", Link: "https://a.example/apply", Source: "A", Niche: "OT"},
	})
	writeGrants(t, env.path("family.json"), []*grant.Grant{
		{Title: "Family Therapy Fund", Link: "https://f.example/fund", Source: "F", Niche: "Family", Deadline: "Rolling"},
	})
	resources := `[{"title": "Early Start", "description": "Free early intervention.", "link": "https://es.example"}]`
	if err := os.WriteFile(env.path("resources.json"), []byte(resources), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, env, "build"); err != nil {
		t.Fatalf("build error = %v", err)
	}

	siteDir := env.path("site")
	for _, name := range []string{"grants/clinical-fellowship.html", "grants/family-therapy-fund.html", "resources.html"} {
		if _, err := os.Stat(filepath.Join(siteDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(siteDir, "grants/how-to-apply.html")); !os.IsNotExist(err) {
		t.Error("junk titles should not get a page")
	}

	sitemap, err := os.ReadFile(filepath.Join(siteDir, "sitemap.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(sitemap), "https://grants.example.org/resources.html") {
		t.Error("sitemap should list the resources page")
	}
}

func TestListCommand(t *testing.T) {
	env := newTestEnv(t, "https://example.org/listing")
	writeGrants(t, env.path("enriched.json"), []*grant.Grant{
		{Title: "Speech Research Grant", Link: "https://a.example/1", Source: "A", Niche: "SLP", Amount: "25000"},
		{Title: "Motor Skills Scholarship", Link: "https://a.example/2", Source: "A", Niche: "PT"},
		{Title: "Voice Fellowship", Link: "https://a.example/3", Source: "A", Niche: "SLP", Deadline: "Rolling"},
	})

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "all grants",
			args:     []string{"list"},
			contains: []string{"Speech Research Grant", "Motor Skills Scholarship", "Voice Fellowship", "Total: 3 grants"},
		},
		{
			name:     "niche filter",
			args:     []string{"list", "--niche", "slp"},
			contains: []string{"Speech Research Grant", "Voice Fellowship", "Filter: Niches: slp"},
			excludes: []string{"Motor Skills Scholarship"},
		},
		{
			name:     "has amount",
			args:     []string{"list", "--has-amount"},
			contains: []string{"Speech Research Grant", "$25,000"},
			excludes: []string{"Voice Fellowship"},
		},
		{
			name:     "rolling",
			args:     []string{"list", "--rolling"},
			contains: []string{"Voice Fellowship"},
			excludes: []string{"Speech Research Grant"},
		},
		{
			name:     "no matches",
			args:     []string{"list", "--query", "astronomy"},
			contains: []string{"No grants found."},
		},
		{
			name:     "table",
			args:     []string{"list", "--format", "table", "--min-amount", "1000"},
			contains: []string{"Speech Research Grant", "TOTAL: 1"},
			excludes: []string{"Voice Fellowship"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, env, tt.args...)
			if err != nil {
				t.Fatalf("list error = %v", err)
			}
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

func TestListCommand_JSON(t *testing.T) {
	env := newTestEnv(t, "https://example.org/listing")
	writeGrants(t, env.path("enriched.json"), []*grant.Grant{
		{Title: "Speech Research Grant", Link: "https://a.example/1", Source: "A", Niche: "SLP"},
	})

	out, err := execute(t, env, "list", "--format", "json")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}

	var result OutputResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if result.Count != 1 || len(result.Grants) != 1 {
		t.Fatalf("count = %d, grants = %d, want 1", result.Count, len(result.Grants))
	}
	if result.Sort != SortDefault {
		t.Errorf("sort = %q, want %q", result.Sort, SortDefault)
	}
}

func TestListCommand_InvalidFlags(t *testing.T) {
	env := newTestEnv(t, "https://example.org/listing")

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"list", "--format", "xml"}},
		{"bad sort", []string{"list", "--sort", "random"}},
		{"bad deadline", []string{"list", "--deadline", "someday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, env, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestConfigCommand(t *testing.T) {
	env := newTestEnv(t, "https://example.org/listing")

	out, err := execute(t, env, "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	for _, want := range []string{"url: https://grants.example.org", "brand: GrantFlow", "name: Test Foundation"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t, "https://example.org/listing")

	out, err := execute(t, env, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if out != "grantflow version dev\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	env := testEnv{dir: dir, config: filepath.Join(dir, "grantflow.yaml")}
	if err := os.WriteFile(env.config, []byte("site:\n  url: not-a-url\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, env, "build"); err == nil {
		t.Error("expected a config validation error")
	}
}
