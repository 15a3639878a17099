//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rproc-labs/rproc/internal/actions"
	"github.com/rproc-labs/rproc/internal/config"
	"github.com/rproc-labs/rproc/internal/icons"
	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/provider"
	"github.com/rproc-labs/rproc/internal/registry"
	"github.com/rproc-labs/rproc/internal/rutils"
)

// testEnv holds an isolated host: settings, log, provider, registry, actions.
type testEnv struct {
	HomeDir    string // RPROC_HOME
	UserDir    string // R_SCRIPTS_FOLDER
	BuiltinDir string // built-in scripts folder
	Store      *config.ViperStore
	Log        *processinglog.Memory
	Provider   *provider.RProvider
	Registry   *registry.Registry
	Actions    *actions.Service
}

// setupTestEnv creates isolated temp directories and registers an R provider
// against them. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		UserDir:    t.TempDir(),
		BuiltinDir: t.TempDir(),
		Log:        &processinglog.Memory{},
	}
	t.Setenv("RPROC_HOME", env.HomeDir)

	env.Store = config.NewStore(filepath.Join(env.HomeDir, "config.yaml"))
	if err := env.Store.SetValue(rutils.ScriptsFolderSetting, env.UserDir); err != nil {
		t.Fatalf("setting scripts folder: %v", err)
	}
	if err := env.Store.SetValue("ACTIVATE_R", true); err != nil {
		t.Fatalf("activating provider: %v", err)
	}

	env.Provider = provider.New(env.Store, env.Log, icons.NewThemeResolver("", ""), provider.Options{
		BuiltinFolder: env.BuiltinDir,
	})
	env.Registry = registry.New()
	env.Actions = actions.New(env.Store, func() error { return env.Registry.Reload(provider.ID) }, env.Log)
	return env
}

// register registers the provider and fails the test on error.
func (env *testEnv) register(t *testing.T) {
	t.Helper()
	if err := env.Registry.Register(env.Provider); err != nil {
		t.Fatalf("Register: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file to not exist: %s", path)
	}
}

func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("expected %s to contain %q", path, substr)
	}
}

// algorithmNames returns the names of the provider's algorithms in order.
func algorithmNames(p *provider.RProvider) []string {
	var names []string
	for _, a := range p.Algorithms() {
		names = append(names, a.Name)
	}
	return names
}
