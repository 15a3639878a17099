package rscript

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// headerPrefix starts every directive line.
const headerPrefix = "##"

// verbosePrefix marks body lines whose output is echoed to the console.
const verbosePrefix = ">"

// requiresRKey declares the R versions a script supports.
const requiresRKey = "requires_r"

// Parser turns script files into algorithms. The zero value is ready to use.
type Parser struct{}

// Parse implements the discovery parser contract.
func (Parser) Parse(path string) Result {
	return Parse(path)
}

// Parse reads the script at path, parses its header and validates the
// resulting description. Header and schema problems yield a Malformed
// failure; read errors yield an Unexpected failure.
func Parse(path string) Result {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Unexpected(fmt.Errorf("resolving %s: %w", path, err))
	}

	data, err := readFile(abs)
	if err != nil {
		return Unexpected(err)
	}

	alg, err := parseDescription(abs, data)
	if errors.Is(err, bufio.ErrTooLong) {
		return Unexpected(err)
	}
	if err != nil {
		return Malformed(err.Error())
	}

	res, err := Validate(alg)
	if err != nil {
		return Unexpected(fmt.Errorf("validating %s: %w", abs, err))
	}
	if !res.Valid {
		return Malformed(fmt.Sprintf("Could not load R script: %s.\n%s", abs, res.Summary()))
	}

	alg.Help = loadHelp(abs)
	return Parsed(alg)
}

// headerError is returned for a header line the grammar does not accept.
type headerError struct {
	path string
	line string
}

func (e *headerError) Error() string {
	return fmt.Sprintf("Could not load R script: %s.\n Problem with line %q", e.path, e.line)
}

// parseDescription parses header lines and body of a script.
func parseDescription(path string, data []byte) (*Algorithm, error) {
	base := filepath.Base(path)
	alg := &Algorithm{
		Name:             strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), "_", " "),
		Group:            "User R scripts",
		SourcePath:       path,
		UseRasterPackage: true,
		Parameters:       []Parameter{},
		Outputs:          []Output{},
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, headerPrefix):
			if err := alg.processHeaderLine(trimmed); err != nil {
				return nil, &headerError{path: path, line: trimmed}
			}
		case strings.HasPrefix(trimmed, verbosePrefix):
			cmd := strings.TrimPrefix(trimmed, verbosePrefix)
			alg.Script = append(alg.Script, cmd)
			alg.Verbose = append(alg.Verbose, cmd)
		default:
			alg.Script = append(alg.Script, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := alg.checkReferences(); err != nil {
		return nil, fmt.Errorf("Could not load R script: %s.\n %w", path, err)
	}
	return alg, nil
}

// processHeaderLine applies one "##" directive.
func (a *Algorithm) processHeaderLine(line string) error {
	line = strings.TrimSpace(strings.TrimLeft(line, "#"))

	switch strings.ToLower(line) {
	case "showplots":
		a.ShowPlots = true
		if a.outputIndex(PlotsOutputName) < 0 {
			a.Outputs = append(a.Outputs, Output{Name: PlotsOutputName, Description: "R Plots", Kind: OutputHTML})
		}
		return nil
	case "dontuserasterpackage":
		a.UseRasterPackage = false
		return nil
	case "passfilenames":
		a.PassFileNames = true
		return nil
	}

	left, right, ok := strings.Cut(line, "=")
	if !ok {
		return fmt.Errorf("missing '='")
	}
	value := strings.TrimSpace(right)
	lower := strings.ToLower(value)

	switch lower {
	case "name":
		// Kept verbatim; blank names are filtered by the loader.
		a.Name = left
		return nil
	case "group":
		a.Group = strings.TrimSpace(left)
		return nil
	}

	name := strings.TrimSpace(left)
	if strings.EqualFold(name, requiresRKey) {
		if _, err := semver.NewConstraint(value); err != nil {
			return fmt.Errorf("invalid R version constraint %q: %w", value, err)
		}
		a.RequiresR = value
		return nil
	}

	if kind, ok := strings.CutPrefix(lower, "output "); ok {
		out, err := parseOutput(name, strings.TrimSpace(kind))
		if err != nil {
			return err
		}
		a.Outputs = append(a.Outputs, out)
		return nil
	}

	param, err := parseParameter(name, value)
	if err != nil {
		return err
	}
	a.Parameters = append(a.Parameters, param)
	return nil
}

func describe(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func parseOutput(name, kind string) (Output, error) {
	switch kind {
	case OutputRaster, OutputVector, OutputTable, OutputFile, OutputHTML,
		OutputNumber, OutputString, OutputDirectory:
		return Output{Name: name, Description: describe(name), Kind: kind}, nil
	}
	return Output{}, fmt.Errorf("unknown output kind %q", kind)
}

// parseParameter parses the right-hand side of an input declaration.
func parseParameter(name, decl string) (Parameter, error) {
	p := Parameter{Name: name, Description: describe(name)}

	if rest, ok := cutPrefixFold(decl, "optional "); ok {
		p.Optional = true
		decl = strings.TrimSpace(rest)
	}
	lower := strings.ToLower(decl)

	switch {
	case lower == ParamMultipleRaster, lower == ParamMultipleVector:
		p.Type = lower
	case lower == ParamVector, lower == ParamRaster, lower == ParamTable,
		lower == ParamExtent, lower == ParamPoint, lower == ParamCRS,
		lower == ParamFile, lower == ParamFolder:
		p.Type = lower
	case strings.HasPrefix(lower, ParamVector+" "):
		p.Type = ParamVector
		geom := strings.TrimSpace(lower[len(ParamVector):])
		switch geom {
		case "point", "line", "polygon":
			p.Geometry = geom
		default:
			return p, fmt.Errorf("unknown geometry %q", geom)
		}
	case lower == ParamBoolean || strings.HasPrefix(lower, ParamBoolean+" "):
		p.Type = ParamBoolean
		p.Default = "False"
		if def := strings.TrimSpace(decl[len(ParamBoolean):]); def != "" {
			switch strings.ToLower(def) {
			case "true":
				p.Default = "True"
			case "false":
				p.Default = "False"
			default:
				return p, fmt.Errorf("invalid boolean default %q", def)
			}
		}
	case lower == ParamNumber || strings.HasPrefix(lower, ParamNumber+" "):
		p.Type = ParamNumber
		p.Default = "0"
		if def := strings.TrimSpace(decl[len(ParamNumber):]); def != "" {
			if _, err := strconv.ParseFloat(def, 64); err != nil {
				return p, fmt.Errorf("invalid number default %q", def)
			}
			p.Default = def
		}
	case lower == ParamLongString || strings.HasPrefix(lower, ParamLongString+" "):
		p.Type = ParamLongString
		p.Default = strings.TrimSpace(decl[len(ParamLongString):])
	case lower == ParamString || strings.HasPrefix(lower, ParamString+" "):
		p.Type = ParamString
		p.Default = strings.TrimSpace(decl[len(ParamString):])
	case strings.HasPrefix(lower, ParamField+" "):
		p.Type = ParamField
		p.Parent = strings.TrimSpace(decl[len(ParamField):])
	case strings.HasPrefix(lower, ParamSelection+" "):
		p.Type = ParamSelection
		for _, opt := range strings.Split(decl[len(ParamSelection):], ";") {
			if o := strings.TrimSpace(opt); o != "" {
				p.Options = append(p.Options, o)
			}
		}
		if len(p.Options) > 0 {
			p.Default = "0"
		}
	default:
		return p, fmt.Errorf("unknown parameter type %q", decl)
	}
	return p, nil
}

// checkReferences verifies cross-parameter references and name uniqueness.
func (a *Algorithm) checkReferences() error {
	seen := make(map[string]bool)
	for _, p := range a.Parameters {
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		if p.Type == ParamField {
			parent := a.Parameter(p.Parent)
			if parent == nil || (parent.Type != ParamVector && parent.Type != ParamTable) {
				return fmt.Errorf("field %q refers to unknown layer %q", p.Name, p.Parent)
			}
		}
	}
	for _, o := range a.Outputs {
		if seen[o.Name] {
			return fmt.Errorf("duplicate parameter or output %q", o.Name)
		}
		seen[o.Name] = true
	}
	return nil
}

func (a *Algorithm) outputIndex(name string) int {
	for i, o := range a.Outputs {
		if o.Name == name {
			return i
		}
	}
	return -1
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
