package plot

import (
	"fmt"
	"image"
	"time"

	"github.com/go-gota/gota/dataframe"
	chart "github.com/wcharczuk/go-chart/v2"

	apperrors "healthplots/internal/errors"
	"healthplots/internal/frame"
)

// Vehicle listing columns.
const (
	ColAccidentHistory      = "accident_history"
	ColStatus               = "status"
	ColEstimatedMarketValue = "estimated_market_value"

	AccidentHistoryFile = "accident_history.png"
	StatusVsValueFile   = "status_vs_value.png"
)

// PlotAccidentHistory draws how many listings report each accident history
// value. A column holding a single value still yields one bar.
func (p *Plotter) PlotAccidentHistory(df dataframe.DataFrame) (err error) {
	start := time.Now()
	defer func() { p.observe(AccidentHistoryFile, start, err) }()

	counts, err := frame.ValueCounts(df, ColAccidentHistory)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return apperrors.NewRenderError("no accident history values", nil)
	}

	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i], values[i] = c.Label, float64(c.Count)
	}

	img, err := barImage("Accident History", "Count", labels, values, p.width, p.height)
	if err != nil {
		return err
	}
	return savePNG(p.path(AccidentHistoryFile), img)
}

// PlotStatusVsValue draws the mean estimated market value per status.
func (p *Plotter) PlotStatusVsValue(df dataframe.DataFrame) (err error) {
	start := time.Now()
	defer func() { p.observe(StatusVsValueFile, start, err) }()

	means, err := frame.MeanBy(df, ColStatus, ColEstimatedMarketValue)
	if err != nil {
		return err
	}

	labels := make([]string, len(means))
	values := make([]float64, len(means))
	for i, m := range means {
		labels[i], values[i] = m.Group, m.Mean
	}

	img, err := barImage(
		fmt.Sprintf("%s vs %s", Label(ColStatus), Label(ColEstimatedMarketValue)),
		Label(ColEstimatedMarketValue), labels, values, p.width, p.height)
	if err != nil {
		return err
	}
	return savePNG(p.path(StatusVsValueFile), img)
}

// barImage renders one bar per label.
func barImage(title, yName string, labels []string, values []float64, w, h int) (image.Image, error) {
	bars := make([]chart.Value, len(values))
	peak := 0.0
	for i, v := range values {
		bars[i] = chart.Value{
			Label: labels[i],
			Value: v,
			Style: chart.Style{FillColor: colorAt(i), StrokeColor: colorAt(i), StrokeWidth: 1},
		}
		if v > peak {
			peak = v
		}
	}
	yMax := peak * 1.1
	if yMax <= 0 {
		yMax = 1
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      w,
		Height:     h,
		BarWidth:   60,
		BarSpacing: 40,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 40}},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: niceTicks(0, yMax, 6, formatTick),
		},
		Bars: bars,
	}
	return rasterize(bc)
}
