package plot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	apperrors "healthplots/internal/errors"
)

const (
	titleBand  = 34
	legendRow  = 18
	swatchSize = 10
)

// palette is shared by pie slices and hue bars so a category keeps its
// colour across panels.
var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorOrange,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorAlternateYellow,
	chart.ColorCyan,
	chart.ColorAlternateGray,
	chart.ColorAlternateBlue,
	chart.ColorYellow,
	chart.ColorAlternateGreen,
}

func colorAt(i int) drawing.Color {
	return palette[i%len(palette)]
}

// renderer is satisfied by chart.Chart, chart.BarChart and chart.PieChart.
type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// rasterize renders a go-chart value to an in-memory image.
func rasterize(c renderer) (image.Image, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, apperrors.NewRenderError("render chart", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, apperrors.NewRenderError("decode chart", err)
	}
	return img, nil
}

// newCanvas returns a white RGBA image.
func newCanvas(w, h int) *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return rgba
}

// drawOver copies src onto dst at the origin.
func drawOver(dst draw.Image, src image.Image) {
	b := src.Bounds()
	draw.Draw(dst, b.Sub(b.Min), src, b.Min, draw.Src)
}

// drawText writes text with its baseline at (x, y).
func drawText(dst draw.Image, text string, x, y int, col color.Color) {
	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	dr.DrawString(text)
}

func textWidth(text string) int {
	dr := &font.Drawer{Face: basicfont.Face7x13}
	return dr.MeasureString(text).Ceil()
}

// drawCentered writes text horizontally centred in a band of width w.
func drawCentered(dst draw.Image, text string, w, y int) {
	x := (w - textWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	drawText(dst, text, x, y, color.Black)
}

// drawLegend draws one swatch and label per entry from the top-right corner.
func drawLegend(dst draw.Image, labels []string, right, top int) {
	widest := 0
	for _, l := range labels {
		if w := textWidth(l); w > widest {
			widest = w
		}
	}
	left := right - widest - swatchSize - 16
	if left < 0 {
		left = 0
	}
	box := image.Rect(left-4, top-4, right, top+len(labels)*legendRow)
	draw.Draw(dst, box, image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 230}), image.Point{}, draw.Over)

	for i, l := range labels {
		y := top + i*legendRow
		sw := image.Rect(left, y+2, left+swatchSize, y+2+swatchSize)
		draw.Draw(dst, sw, image.NewUniform(colorAt(i)), image.Point{}, draw.Src)
		drawText(dst, l, left+swatchSize+6, y+swatchSize+1, color.Black)
	}
}

// grid lays out panels row-major below an optional figure title.
func grid(title string, panels []image.Image, nrows, ncols, cellW, cellH int) *image.RGBA {
	top := 0
	if title != "" {
		top = titleBand
	}
	canvas := newCanvas(ncols*cellW, nrows*cellH+top)
	if title != "" {
		drawCentered(canvas, title, canvas.Bounds().Dx(), titleBand-12)
	}
	for i, p := range panels {
		if p == nil || i >= nrows*ncols {
			continue
		}
		r, c := i/ncols, i%ncols
		b := p.Bounds()
		draw.Draw(canvas, b.Sub(b.Min).Add(image.Pt(c*cellW, top+r*cellH)), p, b.Min, draw.Src)
	}
	return canvas
}

// savePNG encodes img to path, creating parent directories as needed.
func savePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create plots directory", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("create %s", filepath.Base(path)), err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return apperrors.NewRenderError(fmt.Sprintf("encode %s", filepath.Base(path)), err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("close %s", filepath.Base(path)), err)
	}
	return nil
}

// niceTicks generates up to n tick marks between min and max on a
// 1/2/2.5/5 step.
func niceTicks(min, max float64, n int, format func(float64) string) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	mag := math.Pow(10, math.Floor(math.Log10((max-min)/float64(n-1))))
	best, bestScore := mag, math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Max(math.Ceil((max-min)/step), 2)
		if score := math.Abs(count - float64(n)); score < bestScore {
			best, bestScore = step, score
		}
	}

	start := math.Ceil(min/best) * best
	var ticks []chart.Tick
	for v := start; v <= max+best/1e6; v += best {
		ticks = append(ticks, chart.Tick{Value: v, Label: format(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

func formatTick(v float64) string {
	av := math.Abs(v)
	switch {
	case v == 0:
		return "0"
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
