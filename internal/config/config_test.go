package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"mend/internal/rules"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplateDecodesToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, Template())
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	want := Default()
	want.Path = path
	want.Cache.Dir = filepath.Join(dir, ".mend-cache")
	if diff := cmp.Diff(want, cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("template mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[format]\nindent = \"tab\"\n\n[naming]\nfield_prefix = \"f\"\nconstant_style = \"camel\"\n")
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Path != filepath.Join(root, FileName) {
		t.Fatalf("path = %q", cfg.Path)
	}
	s := cfg.Settings(nil)
	if s.Format.Indent != "\t" {
		t.Errorf("indent = %q", s.Format.Indent)
	}
	if s.Naming.FieldPrefix != "f" || !s.Naming.CamelConstants {
		t.Errorf("naming = %+v", s.Naming)
	}
	if cfg.Format.TabWidth != 4 {
		t.Errorf("unset keys should keep defaults, tab_width = %d", cfg.Format.TabWidth)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" || cfg.Format.Indent != "auto" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestUnknownKeysAreRejected(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[format]\nindnet = \"tab\"\n")
	_, err := Load(path)
	if !errors.Is(err, ErrUnknownKeys) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "format.indnet") {
		t.Fatalf("error does not name the key: %v", err)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name, body, field string
	}{
		{"indent", "[format]\nindent = \"wide\"\n", "format.indent"},
		{"tab width", "[format]\ntab_width = 40\n", "format.tab_width"},
		{"negative cap", "[assist]\nmax_proposals = -1\n", "assist.max_proposals"},
		{"rule id", "[assist]\ndisabled = [\"Add Block\"]\n", "assist.disabled[0]"},
		{"relevance key", "[assist.relevance]\n\"add_block\" = 3\n", "assist.relevance"},
		{"prefix", "[naming]\nfield_prefix = \"1x\"\n", "naming.field_prefix"},
		{"trace level", "[trace]\nlevel = \"loud\"\n", "trace.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tc.body))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("error %q does not mention %s", err, tc.field)
			}
		})
	}
}

func TestSettingsCarryRuleOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[assist]\ndisabled = [\"add-block\", \"no-such-rule\"]\nmax_proposals = 3\n\n[assist.relevance]\n\"unwrap\" = 20\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	s := cfg.Settings(nil)
	if !s.Disabled["add-block"] || s.Relevance["unwrap"] != 20 || s.MaxProposals != 3 {
		t.Fatalf("settings = %+v", s)
	}
	if diff := cmp.Diff([]string{"no-such-rule"}, cfg.UnknownRules(rules.Default())); diff != "" {
		t.Fatalf("unknown rules (-want +got):\n%s", diff)
	}
}

func TestInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir, false); err != nil {
		t.Fatal(err)
	}
	if _, err := Init(dir, false); !errors.Is(err, ErrExists) {
		t.Fatalf("second init: %v", err)
	}
	if _, err := Init(dir, true); err != nil {
		t.Fatalf("forced init: %v", err)
	}
}
