package model

import "fmt"

// GenomeDataset maps genome identifiers to records and remembers insertion
// order, which is the default display order.
type GenomeDataset struct {
	ids     []string
	genomes map[string]*GenomeRecord
}

func NewDataset() *GenomeDataset {
	return &GenomeDataset{genomes: make(map[string]*GenomeRecord)}
}

// Add inserts rec under rec.ID.
func (ds *GenomeDataset) Add(rec *GenomeRecord) error {
	if _, exists := ds.genomes[rec.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRecord, rec.ID)
	}
	ds.ids = append(ds.ids, rec.ID)
	ds.genomes[rec.ID] = rec
	return nil
}

func (ds *GenomeDataset) Get(id string) (*GenomeRecord, bool) {
	rec, ok := ds.genomes[id]
	return rec, ok
}

func (ds *GenomeDataset) Has(id string) bool {
	_, ok := ds.genomes[id]
	return ok
}

func (ds *GenomeDataset) Len() int { return len(ds.ids) }

// IDs returns the identifiers in insertion order.
func (ds *GenomeDataset) IDs() []string {
	out := make([]string, len(ds.ids))
	copy(out, ds.ids)
	return out
}

// Records returns the records in insertion order.
func (ds *GenomeDataset) Records() []*GenomeRecord {
	out := make([]*GenomeRecord, 0, len(ds.ids))
	for _, id := range ds.ids {
		out = append(out, ds.genomes[id])
	}
	return out
}

// MaxLength is the longest genome, 0 for an empty dataset.
func (ds *GenomeDataset) MaxLength() int {
	longest := 0
	for _, rec := range ds.genomes {
		if rec.Length > longest {
			longest = rec.Length
		}
	}
	return longest
}

// LinkCount is the number of links over all genomes.
func (ds *GenomeDataset) LinkCount() int {
	n := 0
	for _, rec := range ds.genomes {
		n += len(rec.Links)
	}
	return n
}
