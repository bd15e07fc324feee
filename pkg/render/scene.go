package render

import (
	"fmt"
	"image/color"

	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/layout"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

// Point is a position in data coordinates (bp, track units).
type Point struct {
	X, Y float64
}

// Bar is the gray backbone of a genome track.
type Bar struct {
	ID     string
	X0, X1 float64
	Y      float64
}

// Label names a track, anchored left-middle.
type Label struct {
	Text string
	X, Y float64
}

// Box is one drawn CDS.
type Box struct {
	Genome string
	Min    Point
	Max    Point
	Strand model.Strand
	Text   string
	Fill   color.NRGBA
}

// Ribbon joins two similar regions on adjacent tracks. Points run
// query start, query end, subject end, subject start.
type Ribbon struct {
	Source   string
	Target   string
	Points   [4]Point
	Identity float64
	Fill     color.NRGBA
}

// LegendEntry is one strand swatch.
type LegendEntry struct {
	Text  string
	Color color.NRGBA
}

// Scene is everything a figure shows, in data coordinates, independent of
// the output backend.
type Scene struct {
	Title      string
	XLabel     string
	XMin, XMax float64
	YMin, YMax float64

	Bars    []Bar
	Labels  []Label
	Boxes   []Box
	Ribbons []Ribbon
	Legend  []LegendEntry

	Scale      *ColorScale
	ScaleLabel string

	// Dangling counts links whose target is not on the figure.
	Dangling int
}

// BuildScene turns a dataset and its layout into drawable primitives.
// CDS shorter than style.MinCDSLength are left out, and ribbons are only
// kept between a genome and the genome on the next track down.
func BuildScene(ds *model.GenomeDataset, lay *layout.Layout, style config.Style) (*Scene, error) {
	scale, err := NewColorScale(style.Colormap, style.IdentityMin, 100)
	if err != nil {
		return nil, err
	}
	forward, err := ParseHexColor(style.ForwardColor)
	if err != nil {
		return nil, fmt.Errorf("forward color: %w", err)
	}
	reverse, err := ParseHexColor(style.ReverseColor)
	if err != nil {
		return nil, fmt.Errorf("reverse color: %w", err)
	}

	sc := &Scene{
		Title:      style.Title,
		XLabel:     "Genomic position (bp)",
		XMin:       lay.XMin,
		XMax:       lay.XMax,
		YMin:       lay.YMin,
		YMax:       lay.YMax,
		Scale:      scale,
		ScaleLabel: fmt.Sprintf("BLAST Identity (%%) ≥ %g", style.IdentityMin),
		Legend: []LegendEntry{
			{Text: "+ Strand CDS", Color: forward},
			{Text: "– Strand CDS", Color: reverse},
		},
	}

	for _, track := range lay.Tracks {
		rec, ok := ds.Get(track.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", layout.ErrUnknownGenome, track.ID)
		}
		length := float64(rec.Length)
		sc.Bars = append(sc.Bars, Bar{ID: rec.ID, X0: 0, X1: length, Y: track.Y})
		sc.Labels = append(sc.Labels, Label{Text: rec.ID, X: length + style.LabelOffset, Y: track.Y})

		mid := track.Y + style.CDSHeight*0.6
		for _, c := range rec.CDS {
			if c.Len() < style.MinCDSLength {
				continue
			}
			fill := forward
			if c.Strand == model.Reverse {
				fill = reverse
			}
			sc.Boxes = append(sc.Boxes, Box{
				Genome: rec.ID,
				Min:    Point{X: float64(c.Start), Y: mid - style.CDSHeight/2},
				Max:    Point{X: float64(c.End), Y: mid + style.CDSHeight/2},
				Strand: c.Strand,
				Text:   c.Label,
				Fill:   withAlpha(fill, style.CDSAlpha),
			})
		}
	}

	for _, track := range lay.Tracks {
		rec, _ := ds.Get(track.ID)
		for _, l := range rec.Links {
			ty, ok := lay.Y(l.Target)
			if !ok {
				sc.Dangling++
				continue
			}
			if !lay.Adjacent(rec.ID, l.Target) {
				continue
			}
			top := track.Y - style.LinkHalfHeight
			bottom := ty + style.LinkHalfHeight
			sc.Ribbons = append(sc.Ribbons, Ribbon{
				Source: rec.ID,
				Target: l.Target,
				Points: [4]Point{
					{X: float64(l.QueryStart), Y: top},
					{X: float64(l.QueryEnd), Y: top},
					{X: float64(l.SubjectEnd), Y: bottom},
					{X: float64(l.SubjectStart), Y: bottom},
				},
				Identity: l.Identity,
				Fill:     withAlpha(scale.At(l.Identity), style.LinkAlpha),
			})
		}
	}

	return sc, nil
}
