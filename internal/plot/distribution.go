package plot

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gota/gota/dataframe"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	apperrors "healthplots/internal/errors"
	"healthplots/internal/frame"
)

const kdePoints = 200

// Histogram is a fixed-width binning of a numeric sample.
type Histogram struct {
	Edges  []float64
	Counts []int
}

// Width is the bin width.
func (h Histogram) Width() float64 {
	if len(h.Edges) < 2 {
		return 0
	}
	return h.Edges[1] - h.Edges[0]
}

// Max is the largest bin count.
func (h Histogram) Max() int {
	m := 0
	for _, c := range h.Counts {
		if c > m {
			m = c
		}
	}
	return m
}

// NewHistogram splits [min, max] of values into bins equal-width bins; the
// last bin is closed on the right. A constant sample gets a unit-wide range
// centred on its value.
func NewHistogram(values []float64, bins int) Histogram {
	if len(values) == 0 || bins < 1 {
		return Histogram{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)
	h := Histogram{Edges: make([]float64, bins+1), Counts: make([]int, bins)}
	for i := range h.Edges {
		h.Edges[i] = lo + float64(i)*width
	}
	h.Edges[bins] = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		h.Counts[i]++
	}
	return h
}

// ScottBandwidth is Scott's rule of thumb for a Gaussian kernel.
func ScottBandwidth(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 1
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= n
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(ss / (n - 1))
	if sd == 0 {
		return 1
	}
	return sd * math.Pow(n, -0.2)
}

// KDE evaluates a Gaussian kernel density estimate at each x.
func KDE(values, xs []float64, bandwidth float64) []float64 {
	out := make([]float64, len(xs))
	if len(values) == 0 || bandwidth <= 0 {
		return out
	}
	norm := 1 / (float64(len(values)) * bandwidth * math.Sqrt(2*math.Pi))
	for i, x := range xs {
		var sum float64
		for _, v := range values {
			u := (x - v) / bandwidth
			sum += math.Exp(-0.5 * u * u)
		}
		out[i] = sum * norm
	}
	return out
}

// PlotColumnDistribution draws a histogram of a numeric column with a KDE
// line scaled to counts, saved as "<column>_distribution.png".
func (p *Plotter) PlotColumnDistribution(df dataframe.DataFrame, column string) (err error) {
	filename := DistributionFile(column)
	start := time.Now()
	defer func() { p.observe(filename, start, err) }()

	values, err := frame.Floats(df, column)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return apperrors.NewRenderError(fmt.Sprintf("column %q has no numeric values", column), nil)
	}

	hist := NewHistogram(values, p.bins)
	lo, hi := hist.Edges[0], hist.Edges[len(hist.Edges)-1]

	stepX := make([]float64, 0, 2*len(hist.Counts)+2)
	stepY := make([]float64, 0, 2*len(hist.Counts)+2)
	stepX, stepY = append(stepX, lo), append(stepY, 0)
	for i, c := range hist.Counts {
		stepX = append(stepX, hist.Edges[i], hist.Edges[i+1])
		stepY = append(stepY, float64(c), float64(c))
	}
	stepX, stepY = append(stepX, hi), append(stepY, 0)

	bw := ScottBandwidth(values)
	kdeX := make([]float64, kdePoints)
	for i := range kdeX {
		kdeX[i] = lo + (hi-lo)*float64(i)/float64(kdePoints-1)
	}
	kdeY := KDE(values, kdeX, bw)
	scale := float64(len(values)) * hist.Width()
	peak := float64(hist.Max())
	for i := range kdeY {
		kdeY[i] *= scale
		peak = math.Max(peak, kdeY[i])
	}
	yMax := peak * 1.1
	if yMax <= 0 {
		yMax = 1
	}

	label := Label(column)
	ch := chart.Chart{
		Title:      fmt.Sprintf("Distribution of %s", label),
		Width:      p.width,
		Height:     p.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  label,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks: niceTicks(lo, hi, 10, formatTick),
		},
		YAxis: chart.YAxis{
			Name:  "Frequency",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: niceTicks(0, yMax, 6, formatTick),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Histogram",
				XValues: stepX,
				YValues: stepY,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 1,
					FillColor:   chart.ColorBlue.WithAlpha(96),
				},
			},
			chart.ContinuousSeries{
				Name:    "KDE",
				XValues: kdeX,
				YValues: kdeY,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 0, G: 60, B: 140, A: 255},
					StrokeWidth: 2,
				},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	img, err := rasterize(ch)
	if err != nil {
		return err
	}
	return savePNG(p.path(filename), img)
}
