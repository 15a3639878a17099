package runtime

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rproc-labs/rproc/internal/rscript"
)

// ValueMarker prefixes the stdout lines that report number and string
// outputs.
const ValueMarker = "@@rproc "

// RenderOptions configures Render.
type RenderOptions struct {
	// LibsUser is the R user library. When set, missing packages are
	// installed there before loading.
	LibsUser string
	// PlotsDir receives the png files of a ##showplots script.
	PlotsDir string
}

// Render produces the R program that runs plan: package loading, input
// assignments, the script body and output writers.
func Render(plan *Plan, opts RenderOptions) string {
	alg := plan.Algorithm
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	if opts.LibsUser != "" {
		line(".libPaths(%s)", quote(filepath.ToSlash(opts.LibsUser)))
	}
	for _, pkg := range packages(alg) {
		if opts.LibsUser != "" {
			line(`tryCatch(find.package(%s), error = function(e) install.packages(%s, dependencies = TRUE, lib = %s, repos = "https://cloud.r-project.org"))`,
				quote(pkg), quote(pkg), quote(filepath.ToSlash(opts.LibsUser)))
		}
		line("library(%s)", quote(pkg))
	}

	tmp := 0
	for _, p := range alg.Parameters {
		v, ok := plan.Params[p.Name]
		if !ok {
			line("%s <- NULL", p.Name)
			continue
		}
		switch p.Type {
		case rscript.ParamMultipleRaster, rscript.ParamMultipleVector:
			var vars []string
			for _, path := range strings.Split(v, ";") {
				name := fmt.Sprintf("tempvar%d", tmp)
				tmp++
				line("%s <- %s", name, loadLayer(alg, p.Type, path))
				vars = append(vars, name)
			}
			if alg.PassFileNames {
				line("%s <- c(%s)", p.Name, strings.Join(vars, ", "))
			} else {
				line("%s <- list(%s)", p.Name, strings.Join(vars, ", "))
			}
		default:
			line("%s <- %s", p.Name, assignment(alg, p, v))
		}
	}
	for _, o := range alg.Outputs {
		if o.Kind == rscript.OutputDirectory || o.Kind == rscript.OutputFile {
			line("%s <- %s", o.Name, quote(filepath.ToSlash(plan.Outputs[o.Name])))
		}
	}

	if alg.ShowPlots {
		line("png(%s)", quote(filepath.ToSlash(filepath.Join(opts.PlotsDir, "Rplots%03d.png"))))
	}
	for _, l := range alg.Script {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if alg.ShowPlots {
		line("dev.off()")
	}

	for _, o := range alg.Outputs {
		dest := filepath.ToSlash(plan.Outputs[o.Name])
		switch o.Kind {
		case rscript.OutputRaster:
			if alg.UseRasterPackage {
				line("writeRaster(%s, %s, overwrite = TRUE)", o.Name, quote(dest))
			} else {
				line("rgdal::writeGDAL(%s, %s)", o.Name, quote(dest))
			}
		case rscript.OutputVector:
			line("sf::st_write(%s, %s, quiet = TRUE, delete_dsn = TRUE)", o.Name, quote(dest))
		case rscript.OutputTable:
			line("write.csv(%s, %s, row.names = FALSE)", o.Name, quote(dest))
		case rscript.OutputNumber, rscript.OutputString:
			line(`cat(%s, format(%s), "\n", sep = "")`, quote(ValueMarker+o.Name+"="), o.Name)
		}
	}
	return b.String()
}

// packages returns the R packages the rendered program needs.
func packages(alg *rscript.Algorithm) []string {
	var needVector, needRaster bool
	for _, p := range alg.Parameters {
		switch p.Type {
		case rscript.ParamVector, rscript.ParamMultipleVector:
			needVector = true
		case rscript.ParamRaster, rscript.ParamMultipleRaster:
			needRaster = true
		}
	}
	for _, o := range alg.Outputs {
		switch o.Kind {
		case rscript.OutputVector:
			needVector = true
		case rscript.OutputRaster:
			needRaster = true
		}
	}
	var pkgs []string
	if needVector && !alg.PassFileNames {
		pkgs = append(pkgs, "sf")
	}
	if needRaster && alg.UseRasterPackage {
		pkgs = append(pkgs, "raster")
	}
	return pkgs
}

func assignment(alg *rscript.Algorithm, p rscript.Parameter, v string) string {
	switch p.Type {
	case rscript.ParamVector, rscript.ParamRaster, rscript.ParamTable:
		return loadLayer(alg, p.Type, v)
	case rscript.ParamBoolean, rscript.ParamNumber, rscript.ParamSelection:
		return v
	case rscript.ParamExtent, rscript.ParamPoint:
		return "c(" + v + ")"
	case rscript.ParamFile, rscript.ParamFolder:
		return quote(filepath.ToSlash(v))
	}
	return quote(v)
}

func loadLayer(alg *rscript.Algorithm, typ, path string) string {
	path = filepath.ToSlash(path)
	if alg.PassFileNames {
		return quote(path)
	}
	switch typ {
	case rscript.ParamRaster, rscript.ParamMultipleRaster:
		if alg.UseRasterPackage {
			return "brick(" + quote(path) + ")"
		}
		return "rgdal::readGDAL(" + quote(path) + ")"
	case rscript.ParamTable:
		return "read.csv(" + quote(path) + ", header = TRUE)"
	}
	return "sf::st_read(" + quote(path) + ", quiet = TRUE)"
}

// quote returns s as an R string literal.
func quote(s string) string {
	return strconv.Quote(s)
}
