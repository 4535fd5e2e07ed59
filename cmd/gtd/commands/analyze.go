package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-trace-deps/internal/config"
	"github.com/l3aro/go-trace-deps/pkg/ddg"
	"github.com/l3aro/go-trace-deps/pkg/graph"
	"github.com/l3aro/go-trace-deps/pkg/trace"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <trace-file>",
	Short: "Build dependence graphs for a recorded trace",
	Long: `Runs the dependence analysis over a trace file (.json or .msgpack) and
prints the selected graph: the statement dependence graph, the data
dependence graph, or the simplified data graph with temporaries removed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		which, _ := cmd.Flags().GetString("graph")
		format, _ := cmd.Flags().GetString("format")
		callDepth, _ := cmd.Flags().GetInt("call-depth")
		keepData, _ := cmd.Flags().GetBool("keep-data")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("call-depth") {
			cfg.CallDepth = callDepth
		}
		if cmd.Flags().Changed("keep-data") {
			cfg.KeepData = keepData
		}
		if format != "" {
			cfg.Format = config.OutputFormat(format)
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		analysis, _, err := runAnalysis(args[0], cfg)
		if err != nil {
			return err
		}

		return printGraph(analysis, which, cfg.Format)
	},
}

// runAnalysis loads a trace document, builds the CFG collaborators and
// runs the dependence analysis with the configured options.
func runAnalysis(path string, cfg *config.Config) (*ddg.Analysis, *traceContext, error) {
	doc, err := trace.Load(path)
	if err != nil {
		return nil, nil, err
	}

	g, funcs, regs, err := doc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building CFG from %s: %w", path, err)
	}

	analysis, err := ddg.New(g, ddg.Options{
		CallDepth: cfg.DepthBound(),
		KeepData:  cfg.KeepData,
		Arch:      regs,
		Functions: funcs,
		Logger:    loggerFor(cfg),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("analyzing %s: %w", path, err)
	}

	return analysis, &traceContext{functions: funcs}, nil
}

func printGraph(analysis *ddg.Analysis, which string, format config.OutputFormat) error {
	switch format {
	case config.FormatJSON:
		switch which {
		case "stmt":
			return printEdgesJSON(edgesJSON(analysis.Graph()))
		case "data":
			return printEdgesJSON(edgesJSON(analysis.DataGraph()))
		case "simplified":
			return printEdgesJSON(edgesJSON(analysis.SimplifiedDataGraph()))
		}
	case config.FormatDot:
		switch which {
		case "stmt":
			return analysis.WriteStatementDot(os.Stdout)
		case "data":
			return analysis.WriteDataDot(os.Stdout, false)
		case "simplified":
			return analysis.WriteDataDot(os.Stdout, true)
		}
	case config.FormatText:
		switch which {
		case "stmt":
			return analysis.WriteStatementGraph(os.Stdout)
		case "data":
			return analysis.WriteDataGraph(os.Stdout, false)
		case "simplified":
			return analysis.WriteDataGraph(os.Stdout, true)
		}
	}
	return fmt.Errorf("unknown graph %q (use 'stmt', 'data' or 'simplified')", which)
}

// edgeJSON is the JSON shape of one rendered graph edge.
type edgeJSON struct {
	Src    string                 `json:"src"`
	Dst    string                 `json:"dst"`
	Labels map[string]interface{} `json:"labels,omitempty"`
}

func edgesJSON[N comparable](g *graph.Directed[N]) []edgeJSON {
	edges := make([]edgeJSON, 0, g.NumEdges())
	for _, e := range g.Edges() {
		labels := make(map[string]interface{}, len(e.Labels))
		for k, v := range e.Labels {
			labels[k] = fmt.Sprintf("%v", v)
		}
		edges = append(edges, edgeJSON{
			Src:    fmt.Sprint(e.Src),
			Dst:    fmt.Sprint(e.Dst),
			Labels: labels,
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Src != edges[j].Src {
			return edges[i].Src < edges[j].Src
		}
		return edges[i].Dst < edges[j].Dst
	})
	return edges
}

func printEdgesJSON(edges []edgeJSON) error {
	data, err := json.MarshalIndent(edges, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	analyzeCmd.Flags().String("graph", "stmt", "Graph to print: stmt, data or simplified")
	analyzeCmd.Flags().String("format", "", "Output format: text, json or dot (default from config)")
	analyzeCmd.Flags().Int("call-depth", -1, "Call depth bound, negative for unbounded")
	analyzeCmd.Flags().Bool("keep-data", false, "Store full variables on reaching-definition labels")
	RootCmd.AddCommand(analyzeCmd)
}
