package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/hydroloc/internal/anneal"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// maxHTMLPoints caps the cost series so long runs stay responsive in the
// browser.
const maxHTMLPoints = 5000

// WriteTraceHTML renders a self-contained dashboard for one run: cost and
// best cost per trial, acceptance rate against temperature, and the best
// layout seen from above.
func WriteTraceHTML(w io.Writer, title string, res *anneal.Result) error {
	if res == nil || res.Trace == nil {
		return fmt.Errorf("no trace to render")
	}
	tr := res.Trace

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(costChart(tr), acceptanceChart(tr), layoutChart(res))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

func costChart(tr *anneal.Trace) *charts.Line {
	best := tr.BestCosts()
	stride := len(best)/maxHTMLPoints + 1

	cost := make([]opts.LineData, 0, len(best)/stride+1)
	bestData := make([]opts.LineData, 0, len(best)/stride+1)
	for i := 0; i < len(best); i += stride {
		c := tr.InitialCost
		if i > 0 {
			c = tr.Costs[i-1].Cost
		}
		cost = append(cost, opts.LineData{Value: []interface{}{i, c}})
		bestData = append(bestData, opts.LineData{Value: []interface{}{i, best[i]}})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Cost", Subtitle: fmt.Sprintf("trials=%d stride=%d", len(tr.Costs), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Trial", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Cost (m)", NameLocation: "middle", NameGap: 45}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.AddSeries("cost", cost, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	line.AddSeries("best cost", bestData, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Step: "end"}))
	return line
}

func acceptanceChart(tr *anneal.Trace) *charts.Line {
	data := make([]opts.LineData, len(tr.AcceptanceRates))
	for i, r := range tr.AcceptanceRates {
		data[i] = opts.LineData{Value: []interface{}{r.Temperature, r.Rate}}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Acceptance rate", Subtitle: fmt.Sprintf("steps=%d", len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "log", Name: "Temperature", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: 1, Name: "Rate", NameLocation: "middle", NameGap: 35}),
	)
	line.AddSeries("acceptance rate", data)
	return line
}

func layoutChart(res *anneal.Result) *charts.Scatter {
	initial := make([]opts.ScatterData, len(res.Trace.InitialLayout))
	for i, p := range res.Trace.InitialLayout {
		initial[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y, p.Z}, Name: fmt.Sprintf("R%d", i)}
	}
	best := make([]opts.ScatterData, len(res.BestLayout))
	for i, p := range res.BestLayout {
		best[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y, p.Z}, Name: fmt.Sprintf("R%d", i)}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Receiver layout (XY)", Subtitle: fmt.Sprintf("best cost %.4g m, stop: %s", res.BestCost, res.StopReason)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("initial", initial, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	scatter.AddSeries("best", best,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top", Formatter: "{b}"}),
	)
	return scatter
}
