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

// PlotFieldRelationships draws a 2x2 grid of count plots with base on the x
// axis and each compare field as the hue, saved as "<base>_relationships.png".
func (p *Plotter) PlotFieldRelationships(df dataframe.DataFrame, base string, compare []string) (err error) {
	filename := RelationshipsFile(base)
	start := time.Now()
	defer func() { p.observe(filename, start, err) }()

	const nrows, ncols = 2, 2
	if len(compare) == 0 || len(compare) > nrows*ncols {
		return apperrors.NewAppValidationError(
			fmt.Sprintf("expected 1 to %d comparison fields, got %d", nrows*ncols, len(compare)))
	}

	tabs := make([]*frame.CrossTab, len(compare))
	for i, field := range compare {
		tab, err := frame.CrossCounts(df, base, field)
		if err != nil {
			return err
		}
		tabs[i] = tab
	}

	cellW, cellH := p.width/ncols, (p.height-titleBand)/nrows
	panels := make([]image.Image, len(tabs))
	for i, tab := range tabs {
		title := fmt.Sprintf("%s vs %s", Label(base), Label(compare[i]))
		img, err := countImage(title, tab, cellW, cellH)
		if err != nil {
			return err
		}
		panels[i] = img
	}

	figure := grid(fmt.Sprintf("%s Relationships", Label(base)), panels, nrows, ncols, cellW, cellH)
	return savePNG(p.path(filename), figure)
}

// PlotSingleRelationship draws one count plot of field split by hue, saved
// as "<field>_vs_<hue>.png".
func (p *Plotter) PlotSingleRelationship(df dataframe.DataFrame, field, hue string) (err error) {
	filename := SingleRelationshipFile(field, hue)
	start := time.Now()
	defer func() { p.observe(filename, start, err) }()

	tab, err := frame.CrossCounts(df, field, hue)
	if err != nil {
		return err
	}
	img, err := countImage(fmt.Sprintf("%s vs %s", field, hue), tab, p.width, p.height)
	if err != nil {
		return err
	}
	return savePNG(p.path(filename), img)
}

// countImage renders a grouped bar chart: one group per X level, one bar
// per hue level, with a hue legend in the top-right corner.
func countImage(title string, tab *frame.CrossTab, w, h int) (image.Image, error) {
	if len(tab.X) == 0 || len(tab.Hue) == 0 {
		return nil, apperrors.NewRenderError(
			fmt.Sprintf("no rows with both %s and %s", tab.XColumn, tab.HueColumn), nil)
	}

	bars := make([]chart.Value, 0, len(tab.X)*(len(tab.Hue)+1))
	for i, x := range tab.X {
		if i > 0 {
			bars = append(bars, chart.Value{
				Value: 0,
				Style: chart.Style{FillColor: chart.ColorTransparent, StrokeColor: chart.ColorTransparent},
			})
		}
		for j := range tab.Hue {
			bar := chart.Value{
				Value: float64(tab.Counts[i][j]),
				Style: chart.Style{FillColor: colorAt(j), StrokeColor: colorAt(j), StrokeWidth: 1},
			}
			if j == 0 {
				bar.Label = x
			}
			bars = append(bars, bar)
		}
	}

	yMax := float64(tab.Max()) * 1.1
	if yMax < 1 {
		yMax = 1
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      w,
		Height:     h,
		BarWidth:   24,
		BarSpacing: 2,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 70}},
		XAxis: chart.Style{
			FontSize:            8,
			TextRotationDegrees: 45,
			TextWrap:            chart.TextWrapNone,
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: niceTicks(0, yMax, 6, formatTick),
		},
		Bars: bars,
	}

	img, err := rasterize(bc)
	if err != nil {
		return nil, err
	}

	rgba := newCanvas(img.Bounds().Dx(), img.Bounds().Dy())
	drawOver(rgba, img)
	drawLegend(rgba, tab.Hue, rgba.Bounds().Dx()-8, 44)
	return rgba, nil
}
