package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"evoloop/adapters/api"
	"evoloop/adapters/ledger"
	"evoloop/adapters/report"
	"evoloop/adapters/rng"
	"evoloop/app"
	"evoloop/domain/metrics"
	"evoloop/internal/config"
	"evoloop/internal/trajectory"
)

func main() {
	// Optional .env; absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "evoloop",
		Short: "Simulated recursive self-improvement over named performance metrics",
	}

	rootCmd.AddCommand(
		newRunCmd(cfg),
		newBatchCmd(cfg),
		newExportCmd(),
		newServeCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run evolution cycles and persist the final report",
		Long: `Run a fixed number of analyze-propose-test-apply cycles over one engine,
print a per-cycle summary and save the final report as a timestamped JSON file.

Example: evoloop run --cycles 10 --seed 12345 --delay 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvolution(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.Run.Cycles, "cycles", cfg.Run.Cycles, "Number of generations to evolve")
	cmd.Flags().Int64Var(&cfg.Engine.Seed, "seed", cfg.Engine.Seed, "Random seed for deterministic runs")
	cmd.Flags().DurationVar(&cfg.Run.Delay, "delay", cfg.Run.Delay, "Pause between cycles")
	cmd.Flags().StringVar(&cfg.Run.OutputDir, "out", cfg.Run.OutputDir, "Directory for the saved report")
	cmd.Flags().StringVar(&cfg.Ledger.Driver, "db-driver", cfg.Ledger.Driver, "History database driver (sqlite3 or postgres; empty disables)")
	cmd.Flags().StringVar(&cfg.Ledger.DSN, "db-dsn", cfg.Ledger.DSN, "History database DSN")

	return cmd
}

func runEvolution(ctx context.Context, cfg *config.Config) error {
	set, err := buildMetricSet(cfg)
	if err != nil {
		return err
	}
	engine := app.NewEngine(set, rng.New(cfg.Engine.Seed))

	opts := []app.RunnerOption{
		app.WithReportStore(report.NewJSONStore(cfg.Run.OutputDir)),
	}
	if cfg.Ledger.Driver != "" {
		led, err := ledger.Open(cfg.Ledger.Driver, cfg.Ledger.DSN)
		if err != nil {
			return err
		}
		defer led.Close()
		opts = append(opts, app.WithLedger(led))
	}

	runner := app.NewRunner(engine, app.RunnerConfig{Cycles: cfg.Run.Cycles, Delay: cfg.Run.Delay}, opts...)
	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d generations evolved, %d improvements applied\n",
		result.RunID, result.Report.CurrentGeneration-1, result.Report.TotalImprovements)
	printProgress(result.Report.OverallProgress)
	fmt.Printf("report saved to %s\n", result.ReportPath)
	return nil
}

func newBatchCmd(cfg *config.Config) *cobra.Command {
	var runs int
	var parallel int64

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run independent engines concurrently and aggregate their outcomes",
		Long: `Run several fully independent engines, each with its own seed, and report
per-metric statistics of the final baseline deltas across runs.

Example: evoloop batch --runs 20 --parallel 4 --cycles 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), cfg, runs, parallel)
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 10, "Number of independent engines to run")
	cmd.Flags().Int64Var(&parallel, "parallel", 4, "Maximum engines running at once")
	cmd.Flags().IntVar(&cfg.Run.Cycles, "cycles", cfg.Run.Cycles, "Generations per engine")
	cmd.Flags().Int64Var(&cfg.Engine.Seed, "seed", cfg.Engine.Seed, "Base seed; run i uses seed+i")

	return cmd
}

func runBatch(ctx context.Context, cfg *config.Config, runs int, parallel int64) error {
	if runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", runs)
	}
	if parallel <= 0 {
		return fmt.Errorf("parallel must be positive, got %d", parallel)
	}
	sem := semaphore.NewWeighted(parallel)
	var wg sync.WaitGroup
	var mu sync.Mutex
	deltas := make([]map[string]float64, 0, runs)

	for i := 0; i < runs; i++ {
		set, err := buildMetricSet(cfg)
		if err != nil {
			return err
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)

		go func(set *metrics.Set, seed int64) {
			defer sem.Release(1)
			defer wg.Done()

			engine := app.NewEngine(set, rng.New(seed))
			for c := 0; c < cfg.Run.Cycles; c++ {
				engine.EvolveGeneration()
			}

			mu.Lock()
			deltas = append(deltas, engine.Report().OverallProgress)
			mu.Unlock()
		}(set, cfg.Engine.Seed+int64(i))
	}
	wg.Wait()

	aggregated, err := trajectory.AggregateDeltas(deltas)
	if err != nil {
		return err
	}

	fmt.Printf("%d runs x %d generations (base seed %d)\n", runs, cfg.Run.Cycles, cfg.Engine.Seed)
	names := make([]string, 0, len(aggregated))
	for name := range aggregated {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := aggregated[name]
		fmt.Printf("  %s: mean %+.1f, median %+.1f, stddev %.1f (min %+.1f, max %+.1f)\n",
			name, s.Mean, s.Median, s.StdDev, s.Min, s.Max)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved report's history to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.Load(in)
			if err != nil {
				return err
			}
			if err := report.ExportExcel(*rep, out); err != nil {
				return err
			}
			fmt.Printf("exported %d history records to %s\n", len(rep.ImprovementHistory), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Saved JSON report to read")
	cmd.Flags().StringVar(&out, "out", "evolution_history.xlsx", "Excel file to write")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one engine over HTTP",
		Long: `Start an HTTP API around a fresh engine. POST /api/generations evolves one
generation; GET /api/report returns the current run state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := buildMetricSet(cfg)
			if err != nil {
				return err
			}
			engine := app.NewEngine(set, rng.New(cfg.Engine.Seed))
			return api.NewServer(engine).ListenAndServe(cfg.Server.Addr)
		},
	}

	cmd.Flags().Int64Var(&cfg.Engine.Seed, "seed", cfg.Engine.Seed, "Random seed for the served engine")
	cmd.Flags().StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "Listen address")

	return cmd
}

func buildMetricSet(cfg *config.Config) (*metrics.Set, error) {
	if cfg.Engine.InitialMetrics != nil {
		return metrics.New(cfg.Engine.InitialMetrics)
	}
	return metrics.Default(), nil
}

func printProgress(progress map[string]float64) {
	names := make([]string, 0, len(progress))
	for name := range progress {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %+.1f from baseline\n", name, progress[name])
	}
}
