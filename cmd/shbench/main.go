// shbench exercises a SPARQL-backed REST API with CRUD workloads at
// increasing concurrency levels and reports latency distributions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagBaseURL  string
	flagSPARQL   string
	flagOutDir   string
	flagEntities []string
	flagValidate bool
)

var rootCmd = &cobra.Command{
	Use:   "shbench",
	Short: "Request batch benchmark for SPARQL-backed CRUD APIs",
	Long: "shbench discovers a CRUD API's shape from its OpenAPI document, fires\n" +
		"concurrent request batches at escalating sizes, and exports latency\n" +
		"statistics as CSV and per-entity charts.",
	// Bare invocation runs the full suite, like `shbench run`.
	RunE: runBenchmark,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full benchmark suite and render charts",
	RunE:  runBenchmark,
}

var redrawCmd = &cobra.Command{
	Use:   "redraw <csv>",
	Short: "Regenerate charts from an existing results CSV without re-running benchmarks",
	Args:  cobra.ExactArgs(1),
	RunE:  runRedraw,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
		cmd.Flags().StringVar(&flagBaseURL, "base-url", "", "REST API base URL (overrides config)")
		cmd.Flags().StringVar(&flagSPARQL, "sparql-url", "", "SPARQL query endpoint URL (overrides config)")
		cmd.Flags().StringVar(&flagOutDir, "out-dir", "", "directory for CSV and chart artifacts (overrides config)")
		cmd.Flags().StringSliceVar(&flagEntities, "entity", nil, "benchmark only these entities (repeatable)")
		cmd.Flags().BoolVar(&flagValidate, "validate-payloads", false, "validate synthesized payloads against the discovered schema")
	}
	rootCmd.AddCommand(runCmd, redrawCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
