package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-trace-deps/internal/config"
	"github.com/l3aro/go-trace-deps/pkg/cfg"
)

// traceContext carries the collaborators built alongside an analysis run.
type traceContext struct {
	functions *cfg.FunctionIndex
}

var functionsCmd = &cobra.Command{
	Use:   "functions <trace-file> [function]",
	Short: "Show per-function dependence subgraphs",
	Long: `Lists the functions known to a trace, or prints the statement dependence
subgraph attributed to one function. An edge crossing two functions appears
in both functions' subgraphs.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		analysis, tc, err := runAnalysis(args[0], cfg)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			return listFunctions(tc)
		}

		fn, err := findFunction(tc, args[1])
		if err != nil {
			return err
		}

		sub, ok := analysis.FunctionGraph(fn)
		if !ok {
			return fmt.Errorf("no dependence edges attributed to function %q", args[1])
		}

		if jsonOutput {
			return printEdgesJSON(edgesJSON(sub))
		}

		fmt.Printf("=== Dependencies for function: %s ===\n", fn.Name)
		for _, e := range edgesJSON(sub) {
			fmt.Printf("  %s -> %s\n", e.Src, e.Dst)
		}
		return nil
	},
}

func listFunctions(tc *traceContext) error {
	funcs := tc.functions.Functions()
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Addr < funcs[j].Addr })

	for _, f := range funcs {
		fmt.Fprintf(os.Stdout, "%#x  %s  (%d blocks)\n", f.Addr, f.Name, len(f.Blocks))
	}
	return nil
}

func findFunction(tc *traceContext, name string) (*cfg.Function, error) {
	for _, f := range tc.functions.Functions() {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("function %q not found in trace", name)
}

func init() {
	functionsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(functionsCmd)
}
