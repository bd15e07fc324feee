package model

import "fmt"

// FeatureCDS is the feature kind the normalizer keeps.
const FeatureCDS = "CDS"

// AnnotatedFeature is one feature as handed over by an annotation reader.
// Start/End are already 0-based half-open; Strand is +1 or -1.
type AnnotatedFeature struct {
	Kind       string
	Start      int
	End        int
	Strand     int
	Qualifiers map[string][]string
}

// Qualifier returns the first value stored under key, or "".
func (f AnnotatedFeature) Qualifier(key string) string {
	if vals := f.Qualifiers[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// AnnotatedRecord is one genome as handed over by an annotation reader.
type AnnotatedRecord struct {
	ID       string
	Length   int
	Features []AnnotatedFeature
}

func qualifier(key string) func(AnnotatedFeature) string {
	return func(f AnnotatedFeature) string { return f.Qualifier(key) }
}

// labelSources are tried in order; the first non-empty value names the CDS.
var labelSources = []func(AnnotatedFeature) string{
	qualifier("gene"),
	qualifier("product"),
	qualifier("locus_tag"),
}

// Label picks the display label of a feature: gene, then product, then
// locus tag.
func Label(f AnnotatedFeature) string {
	for _, source := range labelSources {
		if v := source(f); v != "" {
			return v
		}
	}
	return ""
}

// Normalize converts an annotated record into a GenomeRecord holding every
// CDS of the record in input order. Nothing is filtered by length here.
func Normalize(rec AnnotatedRecord) (*GenomeRecord, error) {
	if rec.Length <= 0 {
		return nil, &MalformedRecordError{ID: rec.ID, Feature: -1, Reason: fmt.Sprintf("non-positive length %d", rec.Length)}
	}

	out := &GenomeRecord{
		ID:     rec.ID,
		Length: rec.Length,
		CDS:    make([]CDSFeature, 0, len(rec.Features)),
	}

	for i, f := range rec.Features {
		if f.Kind != FeatureCDS {
			continue
		}
		if f.Start >= f.End {
			return nil, &MalformedRecordError{ID: rec.ID, Feature: i, Reason: fmt.Sprintf("interval [%d, %d) is empty or inverted", f.Start, f.End)}
		}
		if f.Start < 0 || f.End > rec.Length {
			return nil, &MalformedRecordError{ID: rec.ID, Feature: i, Reason: fmt.Sprintf("interval [%d, %d) outside sequence of length %d", f.Start, f.End, rec.Length)}
		}
		strand, ok := StrandOf(f.Strand)
		if !ok {
			return nil, &MalformedRecordError{ID: rec.ID, Feature: i, Reason: fmt.Sprintf("strand %d is neither +1 nor -1", f.Strand)}
		}
		out.CDS = append(out.CDS, CDSFeature{
			Start:  f.Start,
			End:    f.End,
			Strand: strand,
			Label:  Label(f),
		})
	}

	return out, nil
}
