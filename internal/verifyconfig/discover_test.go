package verifyconfig

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
}

func TestDiscoverMatchesDoubleStarAcrossSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.oriz", "pkg/b.oriz", "pkg/deep/c.oriz", "notes.txt")

	cfg := &Config{Include: []string{"**/*.oriz"}}
	got, err := Discover(cfg, root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	sort.Strings(got)
	if len(got) != 3 {
		t.Fatalf("Discover found %v, want 3 .oriz files", got)
	}
}

func TestDiscoverAppliesExcludeAfterInclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.oriz", "vendor/b.oriz")

	cfg := &Config{Include: []string{"**/*.oriz"}, Exclude: []string{"vendor/**"}}
	got, err := Discover(cfg, root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "a.oriz" {
		t.Fatalf("Discover = %v, want only a.oriz", got)
	}
}

func TestMatchGlobLiteralSegment(t *testing.T) {
	if !matchGlob("src/*.oriz", "src/main.oriz") {
		t.Error("expected src/*.oriz to match src/main.oriz")
	}
	if matchGlob("src/*.oriz", "src/pkg/main.oriz") {
		t.Error("a single * segment should not cross a directory boundary")
	}
}
