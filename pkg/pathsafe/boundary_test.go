package pathsafe

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestIsWithinBase(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"direct child", filepath.Join(base, "x"), true},
		{"nested child", filepath.Join(base, "a", "b", "c.md"), true},
		{"base itself", base, true},
		{"sibling with shared prefix", base + "-sibling/x", false},
		{"parent directory", filepath.Dir(base), false},
		{"traversal out and back in a sibling", filepath.Join(base, "..", "elsewhere"), false},
		{"root", "/", false},
		{"empty candidate", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWithinBase(tt.candidate, base); got != tt.want {
				t.Errorf("IsWithinBase(%q, %q) = %v, want %v", tt.candidate, base, got, tt.want)
			}
		})
	}
}

func TestIsWithinBase_EmptyBase(t *testing.T) {
	if IsWithinBase("/tmp/x", "") {
		t.Error("empty base must never contain anything")
	}
}

func TestIsWithinBase_TraversalInsideBaseResolvesInside(t *testing.T) {
	base := t.TempDir()

	// a/../b stays inside the base after resolution
	candidate := filepath.Join(base, "a", "..", "b")
	if !IsWithinBase(candidate, base) {
		t.Errorf("expected %q to be within %q", candidate, base)
	}
}

func TestIsWithinBase_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on Windows")
	}

	base := t.TempDir()
	outside := t.TempDir()

	// A symlink inside the base pointing outside must be caught once resolved.
	link := filepath.Join(base, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	if IsWithinBase(link, base) {
		t.Error("symlink escaping the base directory must not be considered contained")
	}

	// A file below the symlinked directory escapes too.
	if IsWithinBase(filepath.Join(link, "file.txt"), base) {
		t.Error("path under an escaping symlink must not be considered contained")
	}
}

func TestIsWithinBase_NonexistentCandidate(t *testing.T) {
	base := t.TempDir()

	// Candidates that do not exist yet are resolved through their parent.
	if !IsWithinBase(filepath.Join(base, "not-created-yet.md"), base) {
		t.Error("missing file directly under base should be contained")
	}
	if IsWithinBase(filepath.Join(base, "..", "missing.md"), base) {
		t.Error("missing file outside base must not be contained")
	}
}
