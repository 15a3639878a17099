package rscript

import (
	"os"

	"go.yaml.in/yaml/v3"
)

// HelpDescriptionKey holds the algorithm description in a help sidecar.
const HelpDescriptionKey = "ALG_DESC"

// HelpPath returns the sidecar path for the script at path.
func HelpPath(path string) string {
	return path + HelpSuffix
}

// loadHelp reads the optional help sidecar. JSON sidecars parse as YAML.
// Missing or broken sidecars yield nil.
func loadHelp(path string) map[string]string {
	data, err := os.ReadFile(HelpPath(path))
	if err != nil {
		return nil
	}
	var help map[string]string
	if err := yaml.Unmarshal(data, &help); err != nil {
		return nil
	}
	return help
}

// Description returns the help text for the algorithm itself, if any.
func (a *Algorithm) Description() string {
	return a.Help[HelpDescriptionKey]
}
