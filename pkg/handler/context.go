package handler

// DI for all handlers.

import (
	"github.com/coafione/phage-genome-plotter/pkg/blast"
	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/db"
	"github.com/coafione/phage-genome-plotter/pkg/middle"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

// PlotContext is shared read-only by every request goroutine.
type PlotContext struct {
	Dataset *model.GenomeDataset
	Source  string
	Options config.Options
	Metrics *middle.Metrics

	// Optional. Sequence and BLAST endpoints answer 503 without them.
	SeqDB *db.SequenceDB
	Blast *blast.Runner
	Jobs  *BlastJobManager
}
