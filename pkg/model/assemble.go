package model

import (
	"fmt"
	"io"
	"sort"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/config"
	"go.uber.org/zap"
)

// IDSet is the set of genome identifiers that are in scope for a build.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// AlignmentSource is one pairwise alignment result file. Name carries the
// "<g1>_vs_<g2>.txt" convention that identifies the pair.
type AlignmentSource struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Report summarizes what Assemble included and skipped.
type Report struct {
	Included          []string
	Excluded          []string
	AlignmentsUsed    int
	AlignmentsSkipped int
	Links             int
}

// Assemble builds the dataset from normalized records and alignment files.
// Records outside recognized are dropped, as is every alignment file whose
// query or subject genome did not make it into the dataset. Records keep the
// order given; alignment files are applied in name order.
func Assemble(recognized IDSet, records []*GenomeRecord, alignments []AlignmentSource, f config.Filter) (*GenomeDataset, Report, error) {
	var report Report
	ds := NewDataset()

	for _, rec := range records {
		if !recognized.Has(rec.ID) {
			logger.Debug("Excluding unrecognized genome", zap.String("genome", rec.ID))
			report.Excluded = append(report.Excluded, rec.ID)
			continue
		}
		if err := ds.Add(rec); err != nil {
			return nil, report, err
		}
		report.Included = append(report.Included, rec.ID)
	}

	sorted := make([]AlignmentSource, len(alignments))
	copy(sorted, alignments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, src := range sorted {
		g1, g2, ok := ParsePairName(src.Name)
		if !ok || !ds.Has(g1) || !ds.Has(g2) {
			logger.Debug("Skipping alignment file", zap.String("file", src.Name))
			report.AlignmentsSkipped++
			continue
		}

		links, err := readLinks(src, g1, g2, f)
		if err != nil {
			return nil, report, err
		}

		rec, _ := ds.Get(g1)
		rec.Links = append(rec.Links, links...)
		report.AlignmentsUsed++
		report.Links += len(links)
	}

	return ds, report, nil
}

func readLinks(src AlignmentSource, g1, g2 string, f config.Filter) ([]SimilarityLink, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Name, err)
	}
	defer rc.Close()
	return ExtractLinks(rc, g1, g2, f)
}
