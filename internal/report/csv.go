// Package report exports optimisation traces, layouts and delay estimates
// as CSV tables, PNG plots and an HTML dashboard.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/hydroloc/internal/anneal"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/tdoa"
	"github.com/banshee-data/hydroloc/internal/uncertainty"
)

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func flush(w *csv.Writer) error {
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func receiverHeader(n int) []string {
	header := make([]string, 0, n*geometry.Axes)
	for i := 0; i < n; i++ {
		for _, axis := range geometry.AxisNames {
			header = append(header, fmt.Sprintf("r%d_%s", i, axis))
		}
	}
	return header
}

func appendLayout(row []string, l geometry.Layout) []string {
	for _, p := range l {
		row = append(row, ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
	}
	return row
}

// WriteTraceCSV writes one row per trial: step, temperature, cost after the
// decision, running best cost, acceptance, the perturbed parameter and the
// full layout. Trial 0 is the initial layout.
func WriteTraceCSV(w io.Writer, tr *anneal.Trace) error {
	cw := csv.NewWriter(w)
	n := len(tr.InitialLayout)
	header := append([]string{"trial", "step", "temperature", "cost", "best_cost", "accepted", "receiver", "axis"}, receiverHeader(n)...)
	if err := cw.Write(header); err != nil {
		return err
	}

	best := tr.BestCosts()
	row := []string{"0", "0", "", ftoa(tr.InitialCost), ftoa(best[0]), "", "", ""}
	if err := cw.Write(appendLayout(row, tr.InitialLayout)); err != nil {
		return err
	}

	perStep := len(tr.Costs)
	if len(tr.AcceptanceRates) > 0 {
		perStep = len(tr.Costs) / len(tr.AcceptanceRates)
	}
	for i, c := range tr.Costs {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(i/perStep + 1),
			ftoa(c.Temperature),
			ftoa(c.Cost),
			ftoa(best[i+1]),
			strconv.FormatBool(c.Accepted),
			strconv.Itoa(c.Receiver),
			geometry.AxisNames[c.Axis],
		}
		if i < len(tr.Layouts) {
			row = appendLayout(row, tr.Layouts[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return flush(cw)
}

// WriteAcceptanceCSV writes the acceptance rate of every temperature step.
func WriteAcceptanceCSV(w io.Writer, tr *anneal.Trace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"step", "temperature", "acceptance_rate"}); err != nil {
		return err
	}
	for i, r := range tr.AcceptanceRates {
		if err := cw.Write([]string{strconv.Itoa(i + 1), ftoa(r.Temperature), ftoa(r.Rate)}); err != nil {
			return err
		}
	}
	return flush(cw)
}

// WriteLayoutCSV writes one row per receiver.
func WriteLayoutCSV(w io.Writer, l geometry.Layout) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"receiver", "x", "y", "z"}); err != nil {
		return err
	}
	for i, p := range l {
		if err := cw.Write([]string{strconv.Itoa(i), ftoa(p.X), ftoa(p.Y), ftoa(p.Z)}); err != nil {
			return err
		}
	}
	return flush(cw)
}

// WriteUncertaintyCSV writes the per-point uncertainty of a layout over its
// evaluation grid.
func WriteUncertaintyCSV(w io.Writer, points []geometry.Point, us []uncertainty.Uncertainty) error {
	if len(points) != len(us) {
		return fmt.Errorf("grid has %d points but %d uncertainties", len(points), len(us))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y", "z", "err_x", "err_y", "err_z", "err_rms"}); err != nil {
		return err
	}
	for i, p := range points {
		u := us[i]
		if err := cw.Write([]string{ftoa(p.X), ftoa(p.Y), ftoa(p.Z), ftoa(u.X), ftoa(u.Y), ftoa(u.Z), ftoa(u.RMS)}); err != nil {
			return err
		}
	}
	return flush(cw)
}

// WriteTDOACSV writes one row per pair. lag_samples is counted at
// sampling_frequency, the rate the pair was correlated at. Failed pairs keep
// their row with the error text and empty measurements.
func WriteTDOACSV(w io.Writer, results []tdoa.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ref", "other", "lag_samples", "tdoa_sec", "correlation", "sampling_frequency", "error"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{strconv.Itoa(r.Pair.Ref), strconv.Itoa(r.Pair.Other)}
		if r.Err != nil {
			row = append(row, "", "", "", "", r.Err.Error())
		} else {
			row = append(row, strconv.Itoa(r.Lag), ftoa(r.Delay), ftoa(r.Correlation), ftoa(r.SamplingFrequency), "")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return flush(cw)
}
