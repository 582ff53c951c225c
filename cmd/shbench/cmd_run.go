package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shexpose/shbench/internal/bench"
	"github.com/shexpose/shbench/internal/config"
	"github.com/shexpose/shbench/internal/discovery"
	"github.com/shexpose/shbench/internal/report"
	"github.com/shexpose/shbench/internal/sparql"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)

	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagSPARQL != "" {
		cfg.SPARQLEndpoint = flagSPARQL
	}
	if flagOutDir != "" {
		cfg.OutputDir = flagOutDir
	}
	if cmd.Flags().Changed("validate-payloads") {
		cfg.ValidatePayloads = flagValidate
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBenchmark(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	run := config.NewRun(cfg.OutputDir)
	logger = logger.With(zap.String("run_id", run.ID))

	fmt.Println("\n  ShExpose Request Batch Benchmark")
	fmt.Printf("  REST target  : %s\n", cfg.BaseURL)
	fmt.Printf("  SPARQL       : %s\n", cfg.SPARQLEndpoint)
	fmt.Printf("  Batch Sizes  : %v\n\n", cfg.BatchSizes)

	httpc := &http.Client{Timeout: cfg.Timeout}

	fmt.Println("Discovering endpoints ...")
	endpoints, err := discovery.Discover(ctx, httpc, cfg.BaseURL)
	if err != nil {
		// Discovery failure is fatal for the whole run.
		return err
	}
	fmt.Printf("Found: %s\n", strings.Join(endpointNames(endpoints), ", "))

	queries := sparql.NewClient(cfg.SPARQLEndpoint, httpc, logger)
	exec := bench.NewExecutor(cfg.BaseURL, cfg.Timeout, logger)
	orch := bench.NewOrchestrator(exec, cfg, logger)
	orch.OnPhase = func(entity, operation string, summaries []bench.Summary) {
		fmt.Printf("\n  [%s] %s\n", entity, operation)
		report.PrintTable(os.Stdout, summaries)
	}

	only := make(map[string]bool, len(flagEntities))
	for _, name := range flagEntities {
		only[name] = true
	}

	all := runEntities(ctx, cfg, endpoints, queries, orch, only, logger)

	if len(all) == 0 {
		logger.Warn("no benchmark results produced")
		return nil
	}

	if err := report.WriteCSV(run.CSVPath(), all); err != nil {
		return err
	}
	fmt.Printf("\nResults saved to %s\n", run.CSVPath())

	if err := report.WriteCharts(all, run.ChartPath); err != nil {
		return err
	}
	for _, entity := range report.Entities(all) {
		fmt.Printf("Chart saved to %s\n", run.ChartPath(entity))
	}
	fmt.Println("\nDone.")
	return nil
}

// runEntities benchmarks every configured entity in name order. An entity
// contributes no rows when the --entity filter excludes it, the API
// description does not list it, or the triple store holds no instances of
// its type.
func runEntities(
	ctx context.Context,
	cfg *config.Config,
	endpoints map[string]*discovery.Endpoint,
	queries *sparql.Client,
	orch *bench.Orchestrator,
	only map[string]bool,
	logger *zap.Logger,
) []bench.Summary {
	var all []bench.Summary
	for _, name := range cfg.EntityNames() {
		if len(only) > 0 && !only[name] {
			continue
		}
		ep, ok := endpoints[name]
		if !ok {
			logger.Warn("entity not present in API description, skipping", zap.String("entity", name))
			continue
		}

		typeURI := cfg.EntityTypes[name]
		fmt.Printf("\n%s\n  Entity : %s\n  Type   : <%s>\n  Attrs  : %s\n%s\n",
			strings.Repeat("=", 62), name, typeURI,
			strings.Join(ep.Attributes, ", "), strings.Repeat("=", 62))

		uris, err := queries.InstanceURIs(ctx, typeURI)
		if err != nil {
			logger.Warn("instance lookup failed, skipping entity", zap.String("entity", name), zap.Error(err))
			continue
		}
		if len(uris) == 0 {
			logger.Warn("no existing instances, skipping entity", zap.String("entity", name))
			continue
		}
		fmt.Printf("  URI pool: %d total\n", len(uris))

		all = append(all, orch.RunEntity(ctx, ep, uris)...)
		if ctx.Err() != nil {
			logger.Warn("run interrupted", zap.Error(ctx.Err()))
			break
		}
	}
	return all
}

func endpointNames(endpoints map[string]*discovery.Endpoint) []string {
	names := make([]string, 0, len(endpoints))
	for name := range endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
