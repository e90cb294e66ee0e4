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

// PlotCategories draws one pie chart per column on an nrows x ncols grid
// and saves it as filename. Columns beyond the grid are ignored. Every
// column is checked before anything is drawn, so a missing column leaves
// no file behind.
func (p *Plotter) PlotCategories(df dataframe.DataFrame, columns []string, nrows, ncols int, filename string) (err error) {
	start := time.Now()
	defer func() { p.observe(filename, start, err) }()

	if nrows < 1 || ncols < 1 {
		return apperrors.NewAppValidationError(fmt.Sprintf("invalid %dx%d grid", nrows, ncols))
	}
	if len(columns) > nrows*ncols {
		columns = columns[:nrows*ncols]
	}

	counts := make([][]frame.Count, len(columns))
	for i, col := range columns {
		c, err := frame.ValueCounts(df, col)
		if err != nil {
			return err
		}
		if len(c) == 0 {
			return apperrors.NewRenderError(fmt.Sprintf("column %q has no values", col), nil)
		}
		counts[i] = c
	}

	cellW, cellH := p.width/ncols, p.height/nrows
	panels := make([]image.Image, len(columns))
	for i, col := range columns {
		img, err := pieImage(fmt.Sprintf("Distribution of %s", Label(col)), counts[i], cellW, cellH)
		if err != nil {
			return err
		}
		panels[i] = img
	}

	return savePNG(p.path(filename), grid("", panels, nrows, ncols, cellW, cellH))
}

// pieImage renders a pie with "label pct%" slice labels.
func pieImage(title string, counts []frame.Count, w, h int) (image.Image, error) {
	total := 0
	for _, c := range counts {
		total += c.Count
	}

	values := make([]chart.Value, len(counts))
	for i, c := range counts {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", c.Label, 100*float64(c.Count)/float64(total)),
			Value: float64(c.Count),
			Style: chart.Style{
				FillColor:   colorAt(i),
				StrokeColor: chart.ColorWhite,
				StrokeWidth: 1,
				FontSize:    8,
			},
		}
	}

	pie := chart.PieChart{
		Title:      title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 36, Left: 12, Right: 12, Bottom: 12}},
		Values:     values,
	}
	return rasterize(pie)
}
