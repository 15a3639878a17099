package actions

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/rproc-labs/rproc/internal/rscript"
	"github.com/rproc-labs/rproc/internal/rutils"
)

//go:embed templates
var templateFS embed.FS

// Script templates.
const (
	TemplateVector = "vector"
	TemplateRaster = "raster"
	TemplatePlot   = "plot"
)

// Templates lists the available script templates.
var Templates = []string{TemplateVector, TemplateRaster, TemplatePlot}

// ScriptData holds the variables available to script templates.
type ScriptData struct {
	Name  string
	Group string
}

// CreateOptions configures Create.
type CreateOptions struct {
	Name      string
	Group     string // defaults to "User R scripts"
	Template  string // defaults to TemplateVector
	OutputDir string // defaults to the first user scripts folder
}

// CreateResult holds the outcome of Create.
type CreateResult struct {
	Path     string
	Warnings []string
}

// FileName derives a script file name from an algorithm name.
func FileName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	return b.String() + rscript.Suffix
}

// Create writes a new script from a template. Existing files are never
// overwritten. The new script is parsed and any problem is reported as a
// warning.
func (s *Service) Create(opts CreateOptions) (*CreateResult, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("script name is required")
	}
	if opts.Group == "" {
		opts.Group = "User R scripts"
	}
	if opts.Template == "" {
		opts.Template = TemplateVector
	}

	tmplBytes, err := templateFS.ReadFile("templates/" + opts.Template + ".rsx.tmpl")
	if err != nil {
		return nil, fmt.Errorf("template %q not found; available: %s", opts.Template, strings.Join(Templates, ", "))
	}

	dir := opts.OutputDir
	if dir == "" {
		dir, err = rutils.EnsureScriptsFolder(s.store)
		if err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(dir, rutils.DirPermUser); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	fileName := FileName(opts.Name)
	if fileName == rscript.Suffix {
		return nil, fmt.Errorf("script name %q has no usable characters", opts.Name)
	}
	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrExists)
	}

	tmpl, err := template.New(opts.Template).Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", opts.Template, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ScriptData{Name: strings.TrimSpace(opts.Name), Group: opts.Group}); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", opts.Template, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrExists)
		}
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	result := &CreateResult{Path: path}
	if res := rscript.Parse(path); !res.OK() {
		result.Warnings = append(result.Warnings, res.Failure.Message)
	}
	return result, s.refresh()
}
