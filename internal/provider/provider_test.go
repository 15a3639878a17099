package provider

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/icons"
	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/rutils"
)

const validScript = `##Vector processing=group
##Layer=vector
##Field=field Layer
##Output=output vector
Output <- Layer
`

func newStore(t *testing.T) *config.ViperStore {
	t.Helper()
	t.Setenv("RPROC_HOME", t.TempDir())
	return config.NewStore(filepath.Join(t.TempDir(), "config.yaml"))
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func settingNames(s config.Store) map[string]bool {
	names := make(map[string]bool)
	for _, st := range s.Settings() {
		names[st.Name] = true
	}
	return names
}

func TestIdentity(t *testing.T) {
	p := New(newStore(t), nil, icons.NewThemeResolver("", ""), Options{})
	if p.ID() != "r" {
		t.Errorf("ID() = %q", p.ID())
	}
	if p.Name() != "R scripts" {
		t.Errorf("Name() = %q", p.Name())
	}
	icon, err := p.Icon()
	if err != nil {
		t.Fatalf("Icon(): %v", err)
	}
	if icon.Name != IconName || len(icon.Data) == 0 {
		t.Errorf("Icon() = %+v", icon)
	}
	if p.SVGIconPath() == "" {
		t.Error("SVGIconPath() is empty")
	}
}

func TestIconWithoutResolver(t *testing.T) {
	p := New(newStore(t), nil, nil, Options{})
	if _, err := p.Icon(); err == nil {
		t.Error("expected error without a resolver")
	}
	if got := p.SVGIconPath(); got != "" {
		t.Errorf("SVGIconPath() = %q, want empty", got)
	}
}

func TestSettingsLifecycle(t *testing.T) {
	tests := []struct {
		name        string
		interpreter bool
		want        []string
		absent      []string
	}{
		{
			name:   "scripts folder only",
			want:   []string{"ACTIVATE_R", rutils.ScriptsFolderSetting},
			absent: []string{rutils.FolderSetting, rutils.LibsUserSetting, rutils.Use64Setting},
		},
		{
			name:        "interpreter settings",
			interpreter: true,
			want: []string{"ACTIVATE_R", rutils.ScriptsFolderSetting,
				rutils.FolderSetting, rutils.LibsUserSetting, rutils.Use64Setting},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			p := New(store, nil, nil, Options{InterpreterSettings: tt.interpreter})
			p.InitializeSettings()

			names := settingNames(store)
			for _, n := range tt.want {
				if !names[n] {
					t.Errorf("setting %s not registered", n)
				}
			}
			for _, n := range tt.absent {
				if names[n] {
					t.Errorf("setting %s unexpectedly registered", n)
				}
			}
			if p.Active() {
				t.Error("provider should start deactivated")
			}
			if tt.interpreter && config.Bool(store, rutils.Use64Setting) {
				t.Error("R_USE64 should default to false")
			}

			p.Unload()
			if got := len(store.Settings()); got != 0 {
				t.Errorf("Settings() after Unload has %d entries", got)
			}
		})
	}
}

func TestActivate(t *testing.T) {
	store := newStore(t)
	p := New(store, nil, nil, Options{})
	p.InitializeSettings()
	if err := store.SetValue(p.ActivateSetting(), true); err != nil {
		t.Fatal(err)
	}
	if !p.Active() {
		t.Error("Active() = false after activation")
	}
}

func TestLoadAlgorithms(t *testing.T) {
	store := newStore(t)
	user := t.TempDir()
	builtin := t.TempDir()
	writeScript(t, user, "Buffer_zone.rsx", validScript)
	writeScript(t, builtin, "nested/Other_tool.rsx", validScript)
	writeScript(t, user, "broken.rsx", "##x=unknowntype\n")

	if err := store.SetValue(rutils.ScriptsFolderSetting, user); err != nil {
		t.Fatal(err)
	}
	log := &processinglog.Memory{}
	p := New(store, log, nil, Options{BuiltinFolder: builtin})
	p.InitializeSettings()

	if got := len(p.Algorithms()); got != 0 {
		t.Fatalf("Algorithms() before load = %d, want 0", got)
	}

	p.LoadAlgorithms()
	algs := p.Algorithms()
	if len(algs) != 2 {
		t.Fatalf("Algorithms() = %d, want 2", len(algs))
	}
	if algs[0].Name != "Buffer zone" || algs[1].Name != "Other tool" {
		t.Errorf("names = %q, %q", algs[0].Name, algs[1].Name)
	}
	if log.Count(processinglog.SeverityError) != 1 {
		t.Errorf("error entries = %d, want 1", log.Count(processinglog.SeverityError))
	}

	if err := os.Remove(filepath.Join(user, "Buffer_zone.rsx")); err != nil {
		t.Fatal(err)
	}
	p.LoadAlgorithms()
	if got := len(p.Algorithms()); got != 1 {
		t.Errorf("Algorithms() after reload = %d, want 1", got)
	}
	if got := len(algs); got != 2 {
		t.Errorf("previous list changed to %d entries", got)
	}
}

func TestConcurrentReload(t *testing.T) {
	store := newStore(t)
	user := t.TempDir()
	writeScript(t, user, "a.rsx", validScript)
	writeScript(t, user, "b.rsx", validScript)
	if err := store.SetValue(rutils.ScriptsFolderSetting, user); err != nil {
		t.Fatal(err)
	}
	p := New(store, nil, nil, Options{BuiltinFolder: filepath.Join(user, "missing")})
	p.InitializeSettings()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.LoadAlgorithms()
		}()
		go func() {
			defer wg.Done()
			if n := len(p.Algorithms()); n != 0 && n != 2 {
				t.Errorf("observed partial list of %d", n)
			}
		}()
	}
	wg.Wait()
}

func TestContextMenuActions(t *testing.T) {
	store := newStore(t)
	user := t.TempDir()
	builtin := t.TempDir()
	writeScript(t, user, "mine.rsx", validScript)
	writeScript(t, builtin, "shipped.rsx", validScript)
	if err := store.SetValue(rutils.ScriptsFolderSetting, user); err != nil {
		t.Fatal(err)
	}
	p := New(store, nil, nil, Options{BuiltinFolder: builtin})
	p.InitializeSettings()
	p.LoadAlgorithms()

	algs := p.Algorithms()
	if len(algs) != 2 {
		t.Fatalf("Algorithms() = %d, want 2", len(algs))
	}
	if got := p.ContextMenuActions(algs[0]); len(got) != 2 || got[0].ID != ActionEdit || got[1].ID != ActionDelete {
		t.Errorf("ContextMenuActions(user script) = %+v", got)
	}
	if got := p.ContextMenuActions(algs[1]); got != nil {
		t.Errorf("ContextMenuActions(built-in script) = %+v, want nil", got)
	}
	if got := p.Actions(); len(got) != 2 || got[0].ID != ActionCreate || got[1].ID != ActionFetch {
		t.Errorf("Actions() = %+v", got)
	}
}
