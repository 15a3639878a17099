package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if got := CLIName(); got != "rproc" {
		t.Errorf("CLIName() = %q, want %q", got, "rproc")
	}
	if got := HomeDir(); got != ".rproc" {
		t.Errorf("HomeDir() = %q, want %q", got, ".rproc")
	}
	if ScriptsRepoURL() == "" {
		t.Error("ScriptsRepoURL() should not be empty")
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("builtin_scripts"); got != "RPROC_BUILTIN_SCRIPTS" {
		t.Errorf("EnvVar() = %q, want %q", got, "RPROC_BUILTIN_SCRIPTS")
	}
}
