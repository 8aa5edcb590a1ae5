// Package visual renders the price window of a run as an interactive
// go-echarts page: daily candles with the window high/low and a short moving
// average, plus a volume panel.
package visual

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	talib "github.com/markcheno/go-talib"

	"stockbrief/internal/market"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorBull          = "#34d399"
	colorBear          = "#f87171"
	colorSMA           = "#3b82f6"
	colorHigh          = "#fbbf24"
	colorLow           = "#f472b6"

	chartWidthPx   = 1200
	klineHeightPx  = 520
	volumeHeightPx = 220

	smaPeriod = 5
)

// RunChart is the data needed to draw one run.
type RunChart struct {
	Symbol   string
	Subtitle string
	Candles  []market.Candle
	Snapshot market.Snapshot
}

// Render writes a self-contained HTML page to w.
func Render(w io.Writer, in RunChart) error {
	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	if symbol == "" {
		return fmt.Errorf("symbol required for chart render")
	}
	candles := market.Candles(in.Candles).Sorted()
	if len(candles) == 0 {
		return fmt.Errorf("%w: no candles to chart for %s", market.ErrDataUnavailable, symbol)
	}
	snap := in.Snapshot
	if snap.IsZero() {
		s, err := market.Summarize(candles)
		if err != nil {
			return err
		}
		snap = s
	}

	xAxis := buildXAxis(candles)
	kline := buildKlineChart(symbol, in.Subtitle, candles, xAxis)
	kline.Overlap(buildOverlay(candles, xAxis, snap))
	volume := buildVolumeChart(xAxis, candles)

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s daily", symbol)
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(kline, volume)
	return page.Render(w)
}

func buildKlineChart(symbol, subtitle string, candles []market.Candle, xAxis []string) *charts.Kline {
	minPrice, maxPrice := priceBounds(candles)
	padding := (maxPrice - minPrice) * 0.05
	if padding <= 0 {
		padding = math.Max(1, math.Abs(maxPrice)*0.01)
	}
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", klineHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTitleOpts(opts.Title{
			Title:         fmt.Sprintf("%s 1d", symbol),
			Subtitle:      subtitle,
			Left:          "left",
			Top:           "10",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			Min:       round(minPrice-padding, 4),
			Max:       round(maxPrice+padding, 4),
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)
	data := make([]opts.KlineData, 0, len(candles))
	for _, c := range candles {
		data = append(data, opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}})
	}
	kline.SetXAxis(xAxis)
	kline.AddSeries("Price", data)
	return kline
}

// buildOverlay draws the window high and low as flat lines and a short SMA of
// closes when the window is long enough.
func buildOverlay(candles []market.Candle, xAxis []string, snap market.Snapshot) *charts.Line {
	line := charts.NewLine()
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	line.SetXAxis(xAxis)
	n := len(candles)
	line.AddSeries(market.KeyHigh, flatLine(snap.High, n), charts.WithLineStyleOpts(opts.LineStyle{Color: colorHigh, Width: 1, Type: "dashed"}))
	line.AddSeries(market.KeyLow, flatLine(snap.Low, n), charts.WithLineStyleOpts(opts.LineStyle{Color: colorLow, Width: 1, Type: "dashed"}))
	if n >= smaPeriod {
		sma := talib.Sma(market.Candles(candles).Closes(), smaPeriod)
		line.AddSeries(fmt.Sprintf("SMA%d", smaPeriod), toLineData(sma, smaPeriod-1), charts.WithLineStyleOpts(opts.LineStyle{Color: colorSMA, Width: 2}))
	}
	return line
}

func buildVolumeChart(xAxis []string, candles []market.Candle) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", volumeHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Volume", Left: "left", TitleStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)}}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.15)}},
		}),
	)
	vols := make([]opts.BarData, len(candles))
	for i, c := range candles {
		color := colorBear
		if c.Close >= c.Open {
			color = colorBull
		}
		vols[i] = opts.BarData{
			Value:     c.Volume,
			ItemStyle: &opts.ItemStyle{Color: color, Opacity: opts.Float(0.6)},
		}
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("Volume", vols)
	return bar
}

func buildXAxis(candles []market.Candle) []string {
	x := make([]string, len(candles))
	for i, c := range candles {
		x[i] = c.Time().Format("2006-01-02")
	}
	return x
}

func flatLine(v float64, n int) []opts.LineData {
	out := make([]opts.LineData, n)
	for i := range out {
		out[i] = opts.LineData{Value: round(v, 4)}
	}
	return out
}

// toLineData blanks the warm-up bars talib fills with zeros.
func toLineData(series []float64, warmup int) []opts.LineData {
	out := make([]opts.LineData, len(series))
	for i, v := range series {
		if i < warmup || math.IsNaN(v) {
			out[i] = opts.LineData{Value: nil}
			continue
		}
		out[i] = opts.LineData{Value: round(v, 4)}
	}
	return out
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}

func priceBounds(candles []market.Candle) (minVal, maxVal float64) {
	if len(candles) == 0 {
		return 0, 0
	}
	minVal = candles[0].Low
	maxVal = candles[0].High
	for _, c := range candles {
		if c.Low < minVal {
			minVal = c.Low
		}
		if c.High > maxVal {
			maxVal = c.High
		}
	}
	return minVal, maxVal
}
