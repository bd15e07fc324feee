// Package layout assigns genomes to horizontal tracks and answers which
// tracks are adjacent.
package layout

import (
	"errors"
	"fmt"

	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

var (
	ErrUnknownGenome   = errors.New("genome not in dataset")
	ErrDuplicateGenome = errors.New("genome listed twice in display order")
)

// Track is one genome's lane.
type Track struct {
	ID     string
	Index  int
	Y      float64
	Length int
}

// Layout is the track assignment for one figure. Coordinates are in data
// units: x in base pairs, y in track gaps below track 0.
type Layout struct {
	Tracks []Track
	XMin   float64
	XMax   float64
	YMin   float64
	YMax   float64

	index map[string]int
}

// Compute places the genomes of order on evenly spaced tracks, top to
// bottom. A nil or empty order means the dataset's insertion order. Genomes
// of ds missing from order are not placed.
func Compute(ds *model.GenomeDataset, order []string, opts config.Layout) (*Layout, error) {
	if len(order) == 0 {
		order = ds.IDs()
	}

	lay := &Layout{
		Tracks: make([]Track, 0, len(order)),
		index:  make(map[string]int, len(order)),
	}

	longest := 0
	for i, id := range order {
		rec, ok := ds.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGenome, id)
		}
		if _, dup := lay.index[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateGenome, id)
		}
		lay.index[id] = i
		lay.Tracks = append(lay.Tracks, Track{
			ID:     id,
			Index:  i,
			Y:      -float64(i) * opts.Gap,
			Length: rec.Length,
		})
		if rec.Length > longest {
			longest = rec.Length
		}
	}

	lay.XMin = 0
	lay.XMax = float64(longest) + opts.Margin
	lay.YMin = -opts.Gap * float64(len(order))
	lay.YMax = opts.Headroom
	return lay, nil
}

// Index returns the track number of id.
func (l *Layout) Index(id string) (int, bool) {
	i, ok := l.index[id]
	return i, ok
}

// Y returns the baseline of id's track.
func (l *Layout) Y(id string) (float64, bool) {
	i, ok := l.index[id]
	if !ok {
		return 0, false
	}
	return l.Tracks[i].Y, true
}

// Adjacent reports whether dst sits on the track directly below src. Links
// are only drawn between such pairs.
func (l *Layout) Adjacent(src, dst string) bool {
	i, ok := l.index[src]
	if !ok {
		return false
	}
	j, ok := l.index[dst]
	return ok && j == i+1
}

func (l *Layout) Len() int { return len(l.Tracks) }

// IDs returns the display order.
func (l *Layout) IDs() []string {
	ids := make([]string, len(l.Tracks))
	for i, t := range l.Tracks {
		ids[i] = t.ID
	}
	return ids
}
