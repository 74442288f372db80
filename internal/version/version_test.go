package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestColoredKeepsSuffix(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	cases := []struct{ in, want string }{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123"},
		{"nightly", "nightly"},
	}
	for _, c := range cases {
		withVersion(t, c.in, "", "")
		if got := Colored(); got != c.want {
			t.Errorf("Colored() with %q = %q", c.in, got)
		}
	}
}

func TestBannerOptionalFields(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	withVersion(t, "1.0.0", "", "")
	b := Banner()
	if !strings.HasPrefix(b, "mend 1.0.0\n") || strings.Contains(b, "commit") || strings.Contains(b, "built") {
		t.Fatalf("banner:\n%s", b)
	}

	withVersion(t, "1.0.0", "1234567890abcdef1234", "2026-01-15")
	b = Banner()
	if !strings.Contains(b, "commit  1234567890ab\n") || !strings.Contains(b, "built   2026-01-15") {
		t.Fatalf("banner:\n%s", b)
	}
}
