package icons

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveEmbedded(t *testing.T) {
	r := NewThemeResolver("", "")
	icon, err := r.Resolve("/providerR.svg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !icon.Embedded() {
		t.Errorf("Path = %q, want embedded icon", icon.Path)
	}
	if icon.Theme != DefaultTheme || len(icon.Data) == 0 {
		t.Errorf("icon = %+v", icon)
	}
}

func TestResolvePrefersActiveTheme(t *testing.T) {
	dir := t.TempDir()
	for _, theme := range []string{"night", DefaultTheme} {
		if err := os.MkdirAll(filepath.Join(dir, theme), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "night", "providerR.svg"), []byte("<svg id='night'/>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultTheme, "script.svg"), []byte("<svg id='default'/>"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewThemeResolver(dir, "night")

	icon, err := r.Resolve("providerR.svg")
	if err != nil {
		t.Fatalf("Resolve(providerR.svg): %v", err)
	}
	if icon.Theme != "night" || icon.Path != filepath.Join(dir, "night", "providerR.svg") {
		t.Errorf("icon = %+v, want night theme file", icon)
	}

	icon, err = r.Resolve("script.svg")
	if err != nil {
		t.Fatalf("Resolve(script.svg): %v", err)
	}
	if icon.Theme != DefaultTheme || icon.Embedded() {
		t.Errorf("icon = %+v, want default theme file on disk", icon)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewThemeResolver(t.TempDir(), "night")
	if _, err := r.Resolve("missing.svg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(missing.svg) error = %v, want ErrNotFound", err)
	}
	if _, err := r.Resolve("/"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(/) error = %v, want ErrNotFound", err)
	}
}

func TestIconEmbedded(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"embedded:themes/default/providerR.svg", true},
		{"embedded:", true},
		{"/usr/share/rproc/icons/default/providerR.svg", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (Icon{Path: tt.path}).Embedded(); got != tt.want {
			t.Errorf("Icon{Path: %q}.Embedded() = %v, want %v", tt.path, got, tt.want)
		}
	}
}
