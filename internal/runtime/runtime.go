package runtime

import (
	"context"

	"github.com/rproc-labs/rproc/internal/rscript"
)

// Runtime executes an algorithm with the given inputs. Inputs are keyed by
// parameter or output name; output entries name destination paths.
type Runtime interface {
	Run(ctx context.Context, alg *rscript.Algorithm, inputs map[string]string) (*Output, error)
}

// Output captures the result of an algorithm execution.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Values maps output names to destination paths, or to the printed value
	// for number and string outputs.
	Values map[string]string
	// ScriptPath is the rendered R program.
	ScriptPath string
}
