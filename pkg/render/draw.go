package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/coafione/phage-genome-plotter/pkg/config"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Formats are the artifact formats Draw can write.
var Formats = []string{"svg", "png", "pdf", "eps", "jpg", "jpeg", "tif", "tiff"}

// NormalizeFormat lower-cases format and checks it against Formats.
func NormalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

var black = color.NRGBA{A: 255}

func fontSize(pt float64) vg.Length { return vg.Points(pt) }

// Draw writes sc as one image in style.Format. The main panel takes the left
// nine tenths of the page and the identity colorbar sits to its right.
func Draw(w io.Writer, sc *Scene, style config.Style) error {
	format, err := NormalizeFormat(style.Format)
	if err != nil {
		return err
	}
	bar, err := ParseHexColor(style.BarColor)
	if err != nil {
		return fmt.Errorf("bar color: %w", err)
	}

	p, err := tracksPlot(sc, style, bar)
	if err != nil {
		return err
	}
	cb, err := colorbarPlot(sc, style)
	if err != nil {
		return err
	}

	width := vg.Length(style.FigWidth) * vg.Inch
	height := vg.Length(style.FigHeight) * vg.Inch
	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	dc := draw.New(c)

	p.Draw(draw.Crop(dc, 0, -0.1*width, 0, 0))
	if cb != nil {
		cb.Draw(draw.Crop(dc, 0.91*width, -0.03*width, 0.35*height, -0.25*height))
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

func tracksPlot(sc *Scene, style config.Style, bar color.NRGBA) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = sc.Title
	p.Title.TextStyle.Font.Size = fontSize(style.FontSize + 6)
	p.X.Label.Text = sc.XLabel
	p.X.Label.TextStyle.Font.Size = fontSize(style.FontSize)
	p.X.Tick.Label.Font.Size = fontSize(style.FontSize)
	p.HideY()

	for _, b := range sc.Bars {
		line, err := plotter.NewLine(plotter.XYs{{X: b.X0, Y: b.Y}, {X: b.X1, Y: b.Y}})
		if err != nil {
			return nil, fmt.Errorf("bar %s: %w", b.ID, err)
		}
		line.LineStyle.Color = bar
		line.LineStyle.Width = vg.Points(style.BarThickness)
		p.Add(line)
	}

	for _, r := range sc.Ribbons {
		xys := make(plotter.XYs, len(r.Points))
		for i, pt := range r.Points {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, fmt.Errorf("ribbon %s->%s: %w", r.Source, r.Target, err)
		}
		poly.Color = r.Fill
		poly.LineStyle.Width = 0
		p.Add(poly)
	}

	for _, b := range sc.Boxes {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: b.Min.X, Y: b.Min.Y},
			{X: b.Max.X, Y: b.Min.Y},
			{X: b.Max.X, Y: b.Max.Y},
			{X: b.Min.X, Y: b.Max.Y},
		})
		if err != nil {
			return nil, fmt.Errorf("cds on %s: %w", b.Genome, err)
		}
		poly.Color = b.Fill
		poly.LineStyle.Color = black
		poly.LineStyle.Width = vg.Points(0.5)
		p.Add(poly)
	}

	if len(sc.Labels) > 0 {
		xyl := plotter.XYLabels{XYs: make(plotter.XYs, len(sc.Labels)), Labels: make([]string, len(sc.Labels))}
		for i, l := range sc.Labels {
			xyl.XYs[i] = plotter.XY{X: l.X, Y: l.Y}
			xyl.Labels[i] = l.Text
		}
		labels, err := plotter.NewLabels(xyl)
		if err != nil {
			return nil, fmt.Errorf("track labels: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = fontSize(style.FontSize)
			labels.TextStyle[i].XAlign = text.XLeft
			labels.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(labels)
	}

	for _, e := range sc.Legend {
		swatch := &plotter.Line{LineStyle: draw.LineStyle{Color: e.Color, Width: vg.Points(6)}}
		p.Legend.Add(e.Text, swatch)
	}
	p.Legend.TextStyle.Font.Size = fontSize(style.FontSize - 1)
	p.Legend.Top = false
	p.Legend.Left = false

	// Add widens the axes to the data; pin them to the layout afterwards.
	p.X.Min, p.X.Max = sc.XMin, sc.XMax
	p.Y.Min, p.Y.Max = sc.YMin, sc.YMax
	return p, nil
}

// colorbarSteps is the number of flat strips the colorbar is drawn with.
const colorbarSteps = 64

// colorbarPlot draws the identity scale as stacked filled strips so every
// backend, including the vector ones, can render it.
func colorbarPlot(sc *Scene, style config.Style) (*plot.Plot, error) {
	if sc.Scale == nil {
		return nil, nil
	}
	p := plot.New()
	lo, hi := sc.Scale.Min, sc.Scale.Max
	step := (hi - lo) / colorbarSteps
	for i := 0; i < colorbarSteps; i++ {
		y0 := lo + float64(i)*step
		y1 := y0 + step
		if i == colorbarSteps-1 {
			y1 = hi
		}
		strip, err := plotter.NewPolygon(plotter.XYs{{X: 0, Y: y0}, {X: 1, Y: y0}, {X: 1, Y: y1}, {X: 0, Y: y1}})
		if err != nil {
			return nil, fmt.Errorf("colorbar: %w", err)
		}
		strip.Color = sc.Scale.At((y0 + y1) / 2)
		strip.LineStyle.Width = 0
		p.Add(strip)
	}
	p.HideX()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = lo, hi
	p.Y.Label.Text = sc.ScaleLabel
	p.Y.Label.TextStyle.Font.Size = fontSize(style.FontSize)
	p.Y.Tick.Label.Font.Size = fontSize(style.FontSize - 1)
	return p, nil
}
