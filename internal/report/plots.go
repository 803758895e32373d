package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/banshee-data/hydroloc/internal/anneal"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/uncertainty"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
	mapSize    = 8 * vg.Inch
)

// PlotOptimization renders the diagnostic plots of one optimisation run into
// dir and returns the written file paths. iteration numbers repeated runs
// and is embedded in every file name.
func PlotOptimization(dir string, iteration int, res *anneal.Result) ([]string, error) {
	if res == nil || res.Trace == nil {
		return nil, fmt.Errorf("no trace to plot")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}
	name := func(base string) string {
		return filepath.Join(dir, fmt.Sprintf("%s_iteration-%d.png", base, iteration))
	}

	var files []string
	for k := 0; k < geometry.Axes; k++ {
		p, err := receiverAxisPlot(res.Trace, k)
		if err != nil {
			return files, err
		}
		f := name("ReceiversPosition-" + geometry.AxisNames[k])
		if err := p.Save(plotWidth, plotHeight, f); err != nil {
			return files, fmt.Errorf("save receiver %s plot: %w", geometry.AxisNames[k], err)
		}
		files = append(files, f)
	}

	p, err := costPlot(res.Trace)
	if err != nil {
		return files, err
	}
	f := name("Cost")
	if err := p.Save(plotWidth, plotHeight, f); err != nil {
		return files, fmt.Errorf("save cost plot: %w", err)
	}
	files = append(files, f)

	p, err = acceptancePlot(res.Trace)
	if err != nil {
		return files, err
	}
	f = name("AcceptanceRate")
	if err := p.Save(plotWidth, plotHeight, f); err != nil {
		return files, fmt.Errorf("save acceptance plot: %w", err)
	}
	files = append(files, f)

	for _, proj := range []struct {
		label string
		axis  int
	}{{"XY", 1}, {"XZ", 2}} {
		p, err := layoutPlot(res.BestLayout, proj.axis, fmt.Sprintf("Final receiver positions (%s), cost %.4g m", proj.label, res.BestCost))
		if err != nil {
			return files, err
		}
		f := name("FinalReceiversPosition-" + proj.label)
		if err := p.Save(mapSize, mapSize, f); err != nil {
			return files, fmt.Errorf("save layout plot: %w", err)
		}
		files = append(files, f)
	}
	return files, nil
}

func receiverAxisPlot(tr *anneal.Trace, axis int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Receiver %s coordinate", geometry.AxisNames[axis])
	p.X.Label.Text = "Trial"
	p.Y.Label.Text = fmt.Sprintf("%s (m)", geometry.AxisNames[axis])

	n := len(tr.InitialLayout)
	colors := generateColors(n)
	for r := 0; r < n; r++ {
		pts := make(plotter.XYs, 0, len(tr.Layouts)+1)
		pts = append(pts, plotter.XY{X: 0, Y: tr.InitialLayout.Param(r, axis)})
		for i, l := range tr.Layouts {
			pts = append(pts, plotter.XY{X: float64(i + 1), Y: l.Param(r, axis)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("receiver %d line: %w", r, err)
		}
		line.Color = colors[r]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Receiver %d", r), line)
	}
	topRightLegend(p)
	return p, nil
}

func costPlot(tr *anneal.Trace) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Cost"
	p.X.Label.Text = "Trial"
	p.Y.Label.Text = "Cost (m)"

	best := tr.BestCosts()
	cost := make(plotter.XYs, len(best))
	bestPts := make(plotter.XYs, len(best))
	cost[0] = plotter.XY{X: 0, Y: tr.InitialCost}
	for i, c := range tr.Costs {
		cost[i+1] = plotter.XY{X: float64(i + 1), Y: c.Cost}
	}
	for i, b := range best {
		bestPts[i] = plotter.XY{X: float64(i), Y: b}
	}

	costLine, err := plotter.NewLine(cost)
	if err != nil {
		return nil, fmt.Errorf("cost line: %w", err)
	}
	costLine.Color = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	costLine.Width = vg.Points(1)

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return nil, fmt.Errorf("best cost line: %w", err)
	}
	bestLine.Color = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	bestLine.Width = vg.Points(1.5)
	bestLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(costLine, bestLine, plotter.NewGrid())
	p.Legend.Add("cost", costLine)
	p.Legend.Add("best cost", bestLine)
	topRightLegend(p)
	return p, nil
}

func acceptancePlot(tr *anneal.Trace) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Acceptance rate"
	p.X.Label.Text = "Temperature"
	p.Y.Label.Text = "Acceptance rate"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(tr.AcceptanceRates))
	for i, r := range tr.AcceptanceRates {
		pts[i] = plotter.XY{X: r.Temperature, Y: r.Rate}
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("acceptance line: %w", err)
	}
	line.Width = vg.Points(1)
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points, plotter.NewGrid())
	if p.X.Min == p.X.Max {
		// A single step leaves no range for the log scale.
		p.X.Min, p.X.Max = p.X.Min/2, p.X.Max*2
	}
	return p, nil
}

// layoutPlot draws receivers projected on X against the given axis.
func layoutPlot(l geometry.Layout, axis int, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = geometry.AxisNames[axis] + " (m)"

	receivers, err := receiverPlotters(l, axis)
	if err != nil {
		return nil, err
	}
	p.Add(receivers...)
	p.Add(plotter.NewGrid())
	return p, nil
}

// receiverPlotters returns a labelled marker per receiver.
func receiverPlotters(l geometry.Layout, axis int) ([]plot.Plotter, error) {
	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(l)),
		Labels: make([]string, len(l)),
	}
	for i, pt := range l {
		xyl.XYs[i] = plotter.XY{X: pt.X, Y: pt.Axis(axis)}
		xyl.Labels[i] = fmt.Sprintf("R%d", i)
	}
	s, err := plotter.NewScatter(xyl)
	if err != nil {
		return nil, fmt.Errorf("receiver scatter: %w", err)
	}
	s.GlyphStyle.Shape = draw.PyramidGlyph{}
	s.GlyphStyle.Radius = vg.Points(5)
	s.GlyphStyle.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}

	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, fmt.Errorf("receiver labels: %w", err)
	}
	return []plot.Plotter{s, labels}, nil
}

// PlotGridUncertainty writes an XY map of the evaluation grid coloured by
// RMS uncertainty, with the receivers drawn on top.
func PlotGridUncertainty(path string, points []geometry.Point, us []uncertainty.Uncertainty, l geometry.Layout) error {
	if len(points) != len(us) {
		return fmt.Errorf("grid has %d points but %d uncertainties", len(points), len(us))
	}
	if len(points) == 0 {
		return fmt.Errorf("empty grid")
	}

	lo, hi := us[0].RMS, us[0].RMS
	for _, u := range us {
		lo, hi = min(lo, u.RMS), max(hi, u.RMS)
	}
	if hi <= lo {
		hi = lo + 1
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(lo)
	cmap.SetMax(hi)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("RMS localisation uncertainty (%.3g to %.3g m)", lo, hi)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("grid scatter: %w", err)
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, err := cmap.At(us[i].RMS)
		if err != nil {
			c = color.Black
		}
		return draw.GlyphStyle{Color: c, Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
	}
	p.Add(s)

	receivers, err := receiverPlotters(l, 1)
	if err != nil {
		return err
	}
	p.Add(receivers...)

	if err := p.Save(mapSize, mapSize, path); err != nil {
		return fmt.Errorf("save uncertainty map: %w", err)
	}
	return nil
}

func topRightLegend(p *plot.Plot) {
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
}

// generateColors creates a palette of distinct colors, one per receiver.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255), uint8(hueToRGB(p, q, h) * 255), uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
