package utils

import (
	"path/filepath"
	"testing"
)

func TestGetPathInfo(t *testing.T) {
	full, dir, err := GetPathInfo(filepath.Join("rules", "..", "rules", "life.yaml"))
	if err != nil {
		t.Fatalf("GetPathInfo error = %v", err)
	}
	if !filepath.IsAbs(full) {
		t.Errorf("full path %q is not absolute", full)
	}
	if filepath.Base(full) != "life.yaml" || filepath.Base(dir) != "rules" {
		t.Errorf("GetPathInfo = (%q, %q)", full, dir)
	}
}

func TestResolveFrom(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "tmp", "rule.glr")
	tests := []struct {
		base, p, want string
	}{
		{filepath.Join("configs", "life"), "rule.glr", filepath.Join("configs", "life", "rule.glr")},
		{"configs", filepath.Join("..", "shared", "rule.glr"), filepath.Join("shared", "rule.glr")},
		{"configs", abs, abs},
		{"", "rule.glr", "rule.glr"},
	}
	for _, tt := range tests {
		if got := ResolveFrom(tt.base, tt.p); got != tt.want {
			t.Errorf("ResolveFrom(%q, %q) = %q, want %q", tt.base, tt.p, got, tt.want)
		}
	}
}
