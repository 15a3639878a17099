package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rproc-labs/rproc/internal/branding"
	"github.com/rproc-labs/rproc/internal/processinglog"
	"github.com/rproc-labs/rproc/internal/rscript"
	"github.com/rproc-labs/rproc/internal/runtime"
	"github.com/rproc-labs/rproc/internal/rutils"
	"github.com/spf13/cobra"
)

var (
	runInputs   []string
	runWorkDir  string
	runJSON     bool
	runDescribe bool
)

var runCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run an R script algorithm",
	Long: `Execute a loaded R script algorithm with Rscript.

Inputs and output destinations are provided as name=value pairs via --input
flags. Use --describe to list the algorithm's parameters and outputs.

Examples:
  ` + branding.CLIName() + ` run r:bufferzone --describe
  ` + branding.CLIName() + ` run r:bufferzone -i Layer=roads.gpkg -i Distance=50 -i Output=out.gpkg`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeAlgorithmIDs,
	RunE:              runRun,
}

func init() {
	runCmd.Flags().StringArrayVarP(&runInputs, "input", "i", nil, "Input name=value pairs (can be specified multiple times)")
	runCmd.Flags().StringVar(&runWorkDir, "work-dir", "", "Directory for the rendered program and default outputs")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print outputs as JSON")
	runCmd.Flags().BoolVar(&runDescribe, "describe", false, "Describe the algorithm instead of running it")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	inputArgs, err := parseInputArgs(runInputs)
	if err != nil {
		return err
	}

	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	id := args[0]
	if !strings.Contains(id, ":") {
		id = rscript.IDPrefix + id
	}
	alg, _, err := a.registry.Algorithm(id)
	if err != nil {
		return err
	}

	if runDescribe {
		return describeAlgorithm(cmd, alg)
	}

	if !a.provider.Active() {
		return fmt.Errorf("provider %q is not active; run '%s config set %s true' first",
			a.provider.ID(), branding.CLIName(), a.provider.ActivateSetting())
	}

	interp, err := rutils.ResolveInterpreter(a.store, a.provider.InterpreterSettings())
	if err != nil {
		return err
	}
	rt := &runtime.RRuntime{
		Interpreter: interp,
		WorkDir:     runWorkDir,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	}
	if runJSON {
		rt.Stdout = cmd.ErrOrStderr()
	}

	a.log.Add(processinglog.SeverityInfo, fmt.Sprintf("Running %s (%s)", alg.ID(), alg.SourcePath))
	output, err := rt.Run(cmd.Context(), alg, inputArgs)
	if err != nil {
		if errors.Is(err, runtime.ErrUnsupportedR) {
			a.log.Add(processinglog.SeverityError, err.Error())
		}
		return fmt.Errorf("running %s: %w", alg.ID(), err)
	}
	if output.ExitCode != 0 {
		a.log.Add(processinglog.SeverityError, fmt.Sprintf("%s exited with code %d\n%s", alg.ID(), output.ExitCode, strings.TrimSpace(output.Stderr)))
		return fmt.Errorf("%s exited with code %d", alg.ID(), output.ExitCode)
	}

	if runJSON {
		data, err := json.MarshalIndent(output.Values, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	names := make([]string, 0, len(output.Values))
	for name := range output.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\nOutputs:")
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", name, output.Values[name])
		}
	}
	return nil
}

func describeAlgorithm(cmd *cobra.Command, alg *rscript.Algorithm) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", alg.Name, alg.ID())
	fmt.Fprintf(out, "Group:  %s\n", alg.Group)
	fmt.Fprintf(out, "Source: %s\n", alg.SourcePath)
	if alg.RequiresR != "" {
		fmt.Fprintf(out, "Requires R %s\n", alg.RequiresR)
	}
	if d := alg.Description(); d != "" {
		fmt.Fprintf(out, "\n%s\n", d)
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "\nPARAMETER\tTYPE\tDEFAULT\tHELP")
	for _, p := range alg.Parameters {
		typ := p.Type
		switch {
		case p.Geometry != "":
			typ += " " + p.Geometry
		case p.Parent != "":
			typ += " of " + p.Parent
		case len(p.Options) > 0:
			typ += " " + strings.Join(p.Options, "|")
		}
		if p.Optional {
			typ = "optional " + typ
		}
		def := p.Default
		if def == "" {
			def = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, typ, def, alg.Help[p.Name])
	}
	fmt.Fprintln(w, "\nOUTPUT\tKIND\t\tHELP")
	for _, o := range alg.Outputs {
		fmt.Fprintf(w, "%s\t%s\t\t%s\n", o.Name, o.Kind, alg.Help[o.Name])
	}
	return w.Flush()
}

// parseInputArgs parses --input key=value flags into a map.
func parseInputArgs(inputs []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, input := range inputs {
		parts := strings.SplitN(input, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid input format %q: expected key=value", input)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			return nil, fmt.Errorf("invalid input format %q: key cannot be empty", input)
		}
		result[key] = value
	}
	return result, nil
}
