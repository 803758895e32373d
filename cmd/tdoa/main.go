// Command tdoa measures time differences of arrival between the channels of a
// multi-channel recording exported as CSV.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/banshee-data/hydroloc/internal/config"
	"github.com/banshee-data/hydroloc/internal/monitoring"
	"github.com/banshee-data/hydroloc/internal/report"
	"github.com/banshee-data/hydroloc/internal/store"
	"github.com/banshee-data/hydroloc/internal/tdoa"
	"github.com/banshee-data/hydroloc/internal/version"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	wavCSV     string
	outPath    string
	dbPath     string
	label      string
	tighten    float64 // percent; 0 keeps the configured value
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to TDOA configuration JSON (built-in defaults when empty)")
	flag.StringVar(&opts.wavCSV, "wav-csv", "", "CSV file with one column per channel (required)")
	flag.StringVar(&opts.outPath, "out", "", "CSV file for the measured delays (stdout table only when empty)")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite database recording the batch (disabled when empty)")
	flag.StringVar(&opts.label, "label", "", "Label stored with the batch (defaults to the input file name)")
	flag.Float64Var(&opts.tighten, "tighten", 0, "Crop to the central energy percentage of the reference channel before correlating")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("tdoa"))
		return
	}
	if opts.wavCSV == "" {
		fmt.Fprintln(os.Stderr, "tdoa: -wav-csv is required")
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	restore := monitoring.UseZap(logger)

	err = run(opts, os.Stdout)
	restore()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tdoa: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, stdout io.Writer) error {
	cfg := &config.TDOAConfig{}
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadTDOAConfig(opts.configPath); err != nil {
			return err
		}
	}
	if opts.tighten != 0 {
		cfg.TightenPercent = &opts.tighten
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	channels, err := readChannels(opts.wavCSV)
	if err != nil {
		return err
	}
	pairs, err := cfg.Pairs(len(channels))
	if err != nil {
		return err
	}
	if p := cfg.GetTightenPercent(); p > 0 {
		start, stop, err := tdoa.TightenLimits(channels[cfg.GetReferenceChannel()], p)
		if err != nil {
			return fmt.Errorf("tighten reference channel: %w", err)
		}
		for i := range channels {
			channels[i] = channels[i][start : stop+1]
		}
		monitoring.Logf("tightened to samples [%d, %d] (%.1f%% energy)", start, stop, p)
	}

	estOpts, err := cfg.Options()
	if err != nil {
		return err
	}
	if estOpts.MaxTDOA > 0 {
		monitoring.Logf("search window ±%.6g s", estOpts.MaxTDOA)
	}
	fs := cfg.GetSamplingFrequency()
	results, err := tdoa.Estimate(channels, pairs, fs, estOpts)
	if err != nil {
		return err
	}

	if err := printResults(stdout, results); err != nil {
		return err
	}
	if opts.outPath != "" {
		if err := writeCSV(opts.outPath, results); err != nil {
			return err
		}
	}
	if opts.dbPath != "" {
		db, err := store.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		label := opts.label
		if label == "" {
			label = filepath.Base(opts.wavCSV)
		}
		id, err := store.NewTDOAStore(db).InsertBatch(label, fs, estOpts.MaxTDOA, results)
		if err != nil {
			return err
		}
		monitoring.Logf("stored %d measurements as batch %s", len(results), id)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			monitoring.Warnf("pair %d-%d: %v", r.Pair.Ref, r.Pair.Other, r.Err)
		}
	}
	if failed == len(results) {
		return errors.New("no pair produced a measurement")
	}
	return nil
}

// readChannels parses a CSV of samples, one column per channel. A leading
// non-numeric row is treated as a header.
func readChannels(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open waveform: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read waveform %s: %w", path, err)
	}
	if len(records) > 0 && !isNumericRow(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("waveform %s has no samples", path)
	}

	n := len(records[0])
	channels := make([][]float64, n)
	for c := range channels {
		channels[c] = make([]float64, len(records))
	}
	for i, rec := range records {
		for c, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+1, c+1, err)
			}
			channels[c][i] = v
		}
	}
	return channels, nil
}

func isNumericRow(rec []string) bool {
	for _, field := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return false
		}
	}
	return true
}

func printResults(w io.Writer, results []tdoa.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REF\tOTHER\tLAG\tFS (Hz)\tTDOA (s)\tCORR")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%d\t%d\t-\t-\t-\t%v\n", r.Pair.Ref, r.Pair.Other, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%g\t%.9f\t%.3f\n", r.Pair.Ref, r.Pair.Other, r.Lag, r.SamplingFrequency, r.Delay, r.Correlation)
	}
	return tw.Flush()
}

func writeCSV(path string, results []tdoa.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteTDOACSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
