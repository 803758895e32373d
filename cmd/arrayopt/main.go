// Command arrayopt searches for a hydrophone array layout that minimises the
// expected localisation uncertainty over an evaluation grid.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/hydroloc/internal/anneal"
	"github.com/banshee-data/hydroloc/internal/config"
	"github.com/banshee-data/hydroloc/internal/monitoring"
	"github.com/banshee-data/hydroloc/internal/report"
	"github.com/banshee-data/hydroloc/internal/store"
	"github.com/banshee-data/hydroloc/internal/uncertainty"
	"github.com/banshee-data/hydroloc/internal/version"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	outDir     string
	dbPath     string
	label      string
	seed       *uint64 // nil keeps the configured seed
	iterations int     // 0 keeps the configured count
	html       bool
	plots      bool
}

func main() {
	configPath := flag.String("config", "", "Path to array configuration JSON (built-in defaults when empty)")
	outDir := flag.String("out", "out", "Directory for CSV, PNG and HTML output")
	dbPath := flag.String("db", "", "SQLite database recording each run (disabled when empty)")
	label := flag.String("label", "", "Label stored with each run")
	seed := flag.Uint64("seed", 0, "Random seed for the first iteration (overrides config)")
	iterations := flag.Int("iterations", 0, "Number of sequential runs (overrides config when > 0)")
	html := flag.Bool("html", true, "Write an interactive HTML dashboard per run")
	plots := flag.Bool("plots", true, "Write PNG diagnostic plots per run")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("arrayopt"))
		return
	}

	opts := options{
		configPath: *configPath,
		outDir:     *outDir,
		dbPath:     *dbPath,
		label:      *label,
		iterations: *iterations,
		html:       *html,
		plots:      *plots,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.seed = seed
		}
	})

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	restore := monitoring.UseZap(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, opts)
	stop()
	restore()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "arrayopt: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.ArrayConfig, error) {
	if path == "" {
		return config.DefaultArrayConfig(), nil
	}
	return config.LoadArrayConfig(path)
}

func run(ctx context.Context, opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.seed != nil {
		cfg.Seed = opts.seed
	}
	if opts.iterations > 0 {
		cfg.Iterations = &opts.iterations
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	eval, err := cfg.Evaluator()
	if err != nil {
		return fmt.Errorf("build evaluator: %w", err)
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var runs *store.RunStore
	if opts.dbPath != "" {
		db, err := store.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		runs = store.NewRunStore(db)
	}

	schedule := cfg.GetSchedule()
	monitoring.Logf("optimising %d receivers over %d grid points (%s), %d iteration(s)",
		len(cfg.GetBounds()), len(eval.Grid), cfg.GetGridKind(), cfg.GetIterations())

	for i := 0; i < cfg.GetIterations(); i++ {
		iteration := i + 1
		seed := cfg.GetSeed() + uint64(i)

		opt, err := anneal.New(cfg.GetBounds(), schedule, eval, anneal.NewRand(seed))
		if err != nil {
			return err
		}
		opt.Observer = anneal.LogObserver{}

		res, runErr := opt.Run(ctx)
		if res == nil {
			return fmt.Errorf("iteration %d: %w", iteration, runErr)
		}
		monitoring.Logf("iteration %d: stop=%s steps=%d best cost=%.6g m elapsed=%s",
			iteration, res.StopReason, res.Steps, res.BestCost, res.Elapsed)

		if err := writeOutputs(opts, iteration, eval, res); err != nil {
			return err
		}
		if runs != nil {
			rec := store.NewRun(res, schedule, seed, iteration)
			rec.Label = opts.label
			rec.ConfigJSON = configJSON
			if err := runs.Insert(rec); err != nil {
				return fmt.Errorf("store iteration %d: %w", iteration, err)
			}
			monitoring.Logf("iteration %d stored as run %s", iteration, rec.RunID)
		}
		if runErr != nil {
			return fmt.Errorf("iteration %d: %w", iteration, runErr)
		}
	}
	return nil
}

func writeOutputs(opts options, iteration int, eval *uncertainty.Evaluator, res *anneal.Result) error {
	name := func(base, ext string) string {
		return filepath.Join(opts.outDir, fmt.Sprintf("%s_iteration-%d.%s", base, iteration, ext))
	}

	if err := writeFile(name("trace", "csv"), func(w io.Writer) error {
		return report.WriteTraceCSV(w, res.Trace)
	}); err != nil {
		return err
	}
	if err := writeFile(name("acceptance", "csv"), func(w io.Writer) error {
		return report.WriteAcceptanceCSV(w, res.Trace)
	}); err != nil {
		return err
	}
	if err := writeFile(name("layout", "csv"), func(w io.Writer) error {
		return report.WriteLayoutCSV(w, res.BestLayout)
	}); err != nil {
		return err
	}

	us, err := eval.PointUncertainties(res.BestLayout)
	if err != nil {
		return fmt.Errorf("evaluate best layout: %w", err)
	}
	if err := writeFile(name("uncertainty", "csv"), func(w io.Writer) error {
		return report.WriteUncertaintyCSV(w, eval.Grid, us)
	}); err != nil {
		return err
	}

	if opts.plots {
		files, err := report.PlotOptimization(opts.outDir, iteration, res)
		if err != nil {
			return err
		}
		if err := report.PlotGridUncertainty(name("UncertaintyMap", "png"), eval.Grid, us, res.BestLayout); err != nil {
			return err
		}
		monitoring.Logf("wrote %d plots to %s", len(files)+1, opts.outDir)
	}
	if opts.html {
		title := fmt.Sprintf("Array optimisation, iteration %d", iteration)
		if err := writeFile(name("dashboard", "html"), func(w io.Writer) error {
			return report.WriteTraceHTML(w, title, res)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
