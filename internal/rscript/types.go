package rscript

import (
	"strings"
	"unicode"
)

// Suffix is the designated script-description file suffix.
const Suffix = ".rsx"

// HelpSuffix is appended to a script path to locate its help sidecar.
const HelpSuffix = ".help"

// IDPrefix prefixes every algorithm id produced by this package.
const IDPrefix = "r:"

// Parameter types accepted in header lines.
const (
	ParamVector         = "vector"
	ParamRaster         = "raster"
	ParamTable          = "table"
	ParamMultipleRaster = "multiple raster"
	ParamMultipleVector = "multiple vector"
	ParamBoolean        = "boolean"
	ParamNumber         = "number"
	ParamString         = "string"
	ParamLongString     = "longstring"
	ParamField          = "field"
	ParamExtent         = "extent"
	ParamPoint          = "point"
	ParamCRS            = "crs"
	ParamFile           = "file"
	ParamFolder         = "folder"
	ParamSelection      = "selection"
)

// Output kinds accepted after "output".
const (
	OutputRaster    = "raster"
	OutputVector    = "vector"
	OutputTable     = "table"
	OutputFile      = "file"
	OutputHTML      = "html"
	OutputNumber    = "number"
	OutputString    = "string"
	OutputDirectory = "directory"
)

// PlotsOutputName is the HTML output added by ##showplots.
const PlotsOutputName = "RPLOTS"

// Parameter is one algorithm input declared in the header.
type Parameter struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Default     string   `json:"default,omitempty"`
	Optional    bool     `json:"optional,omitempty"`
	Geometry    string   `json:"geometry,omitempty"` // vector only: point, line, polygon
	Parent      string   `json:"parent,omitempty"`   // field only
	Options     []string `json:"options,omitempty"`  // selection only
}

// Output is one algorithm output declared in the header.
type Output struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

// Algorithm is the in-memory representation of one parsed script.
type Algorithm struct {
	Name             string            `json:"name"`
	Group            string            `json:"group"`
	SourcePath       string            `json:"source_path"`
	Parameters       []Parameter       `json:"parameters"`
	Outputs          []Output          `json:"outputs"`
	Script           []string          `json:"-"`
	Verbose          []string          `json:"-"`
	ShowPlots        bool              `json:"show_plots,omitempty"`
	UseRasterPackage bool              `json:"use_raster_package"`
	PassFileNames    bool              `json:"pass_file_names,omitempty"`
	RequiresR        string            `json:"requires_r,omitempty"`
	Help             map[string]string `json:"help,omitempty"`
}

// CommandLineName is the lower-cased name without non-alphanumeric characters.
func (a *Algorithm) CommandLineName() string {
	var b strings.Builder
	for _, r := range strings.ToLower(a.Name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ID returns the provider-qualified algorithm id, e.g. "r:buffer".
func (a *Algorithm) ID() string {
	return IDPrefix + a.CommandLineName()
}

// Parameter returns the parameter called name, or nil.
func (a *Algorithm) Parameter(name string) *Parameter {
	for i := range a.Parameters {
		if a.Parameters[i].Name == name {
			return &a.Parameters[i]
		}
	}
	return nil
}

// IsLayer reports whether the parameter refers to map layers.
func (p Parameter) IsLayer() bool {
	switch p.Type {
	case ParamVector, ParamRaster, ParamTable, ParamMultipleRaster, ParamMultipleVector:
		return true
	}
	return false
}

// IsLayer reports whether the output is written as a map layer or table.
func (o Output) IsLayer() bool {
	switch o.Kind {
	case OutputRaster, OutputVector, OutputTable:
		return true
	}
	return false
}
