package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rproc-labs/rproc/internal/rscript"
)

// Plan is an algorithm invocation with validated inputs and resolved
// output destinations.
type Plan struct {
	Algorithm *rscript.Algorithm
	// Params holds canonical parameter values. Missing optional parameters
	// are absent.
	Params map[string]string
	// Outputs holds destination paths for file-like outputs.
	Outputs map[string]string
}

// outputExtensions maps output kinds to default file extensions.
var outputExtensions = map[string]string{
	rscript.OutputRaster: ".tif",
	rscript.OutputVector: ".gpkg",
	rscript.OutputTable:  ".csv",
	rscript.OutputHTML:   ".html",
	rscript.OutputFile:   ".txt",
}

// ResolveInputs validates inputs against alg, applies defaults, and assigns
// default destinations under workDir to outputs that were not given one.
func ResolveInputs(alg *rscript.Algorithm, inputs map[string]string, workDir string) (*Plan, error) {
	plan := &Plan{Algorithm: alg, Params: map[string]string{}, Outputs: map[string]string{}}

	known := make(map[string]bool)
	for _, p := range alg.Parameters {
		known[p.Name] = true
	}
	for _, o := range alg.Outputs {
		known[o.Name] = true
	}
	var unknown []string
	for name := range inputs {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown inputs for %s: %s", alg.ID(), strings.Join(unknown, ", "))
	}

	var problems []string
	for _, p := range alg.Parameters {
		raw, given := inputs[p.Name]
		if !given {
			raw = p.Default
			given = hasDefault(p)
		}
		if !given {
			if !p.Optional {
				problems = append(problems, fmt.Sprintf("%s: required %s input is missing", p.Name, p.Type))
			}
			continue
		}
		v, err := canonical(p, raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", p.Name, err))
			continue
		}
		plan.Params[p.Name] = v
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid inputs for %s:\n  %s", alg.ID(), strings.Join(problems, "\n  "))
	}

	for _, o := range alg.Outputs {
		if o.Kind == rscript.OutputNumber || o.Kind == rscript.OutputString {
			continue
		}
		dest := inputs[o.Name]
		if dest == "" {
			dest = filepath.Join(workDir, o.Name+outputExtensions[o.Kind])
		}
		abs, err := filepath.Abs(dest)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", o.Name, err)
		}
		plan.Outputs[o.Name] = abs
	}
	return plan, nil
}

// hasDefault reports whether p falls back to a default when not given.
func hasDefault(p rscript.Parameter) bool {
	switch p.Type {
	case rscript.ParamBoolean, rscript.ParamNumber, rscript.ParamString, rscript.ParamLongString:
		return true
	case rscript.ParamSelection:
		return p.Default != ""
	}
	return false
}

// canonical checks raw against the parameter type and normalizes it.
func canonical(p rscript.Parameter, raw string) (string, error) {
	switch p.Type {
	case rscript.ParamBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1", "yes":
			return "TRUE", nil
		case "false", "0", "no":
			return "FALSE", nil
		}
		return "", fmt.Errorf("%q is not a boolean", raw)
	case rscript.ParamNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
			return "", fmt.Errorf("%q is not a number", raw)
		}
		return strings.TrimSpace(raw), nil
	case rscript.ParamSelection:
		raw = strings.TrimSpace(raw)
		if i, err := strconv.Atoi(raw); err == nil && i >= 0 && i < len(p.Options) {
			return raw, nil
		}
		for i, opt := range p.Options {
			if strings.EqualFold(opt, raw) {
				return strconv.Itoa(i), nil
			}
		}
		return "", fmt.Errorf("%q is not one of %s", raw, strings.Join(p.Options, ", "))
	case rscript.ParamExtent:
		return floats(raw, 4, "xmin,xmax,ymin,ymax")
	case rscript.ParamPoint:
		return floats(raw, 2, "x,y")
	case rscript.ParamVector, rscript.ParamRaster, rscript.ParamTable, rscript.ParamFile:
		return existingPath(raw)
	case rscript.ParamMultipleRaster, rscript.ParamMultipleVector:
		var paths []string
		for _, part := range strings.Split(raw, ";") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			path, err := existingPath(part)
			if err != nil {
				return "", err
			}
			paths = append(paths, path)
		}
		if len(paths) == 0 {
			return "", fmt.Errorf("no layers given")
		}
		return strings.Join(paths, ";"), nil
	case rscript.ParamFolder:
		return filepath.Abs(strings.TrimSpace(raw))
	}
	return raw, nil
}

func floats(raw string, n int, layout string) (string, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != n {
		return "", fmt.Errorf("%q must look like %s", raw, layout)
	}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if _, err := strconv.ParseFloat(part, 64); err != nil {
			return "", fmt.Errorf("%q must look like %s", raw, layout)
		}
		parts[i] = part
	}
	return strings.Join(parts, ","), nil
}

func existingPath(raw string) (string, error) {
	path, err := filepath.Abs(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("input %s does not exist", path)
	}
	return path, nil
}
