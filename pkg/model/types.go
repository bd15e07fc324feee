package model

import "fmt"

// Strand is the orientation of a coding feature.
type Strand int8

const (
	Reverse Strand = -1
	Forward Strand = 1
)

func (s Strand) String() string {
	switch s {
	case Forward:
		return "+"
	case Reverse:
		return "-"
	default:
		return fmt.Sprintf("Strand(%d)", int8(s))
	}
}

// StrandOf maps the +1/-1 encoding used by annotation files and the
// dataset format. Any other value is rejected.
func StrandOf(v int) (Strand, bool) {
	switch v {
	case 1:
		return Forward, true
	case -1:
		return Reverse, true
	}
	return 0, false
}

// CDSFeature is a coding interval, 0-based and half-open, in forward-strand
// coordinates.
type CDSFeature struct {
	Start  int
	End    int
	Strand Strand
	Label  string
}

// Len is the number of bases covered.
func (c CDSFeature) Len() int { return c.End - c.Start }

// SimilarityLink is a directed similarity edge stored on its source genome.
// Both coordinate pairs are ascending.
type SimilarityLink struct {
	Target       string  `json:"target"`
	QueryStart   int     `json:"qstart"`
	QueryEnd     int     `json:"qend"`
	SubjectStart int     `json:"sstart"`
	SubjectEnd   int     `json:"send"`
	Identity     float64 `json:"identity"`
}

// NewLink builds a link, sorting each coordinate pair since alignment tools
// report minus-strand hits with start > end.
func NewLink(target string, qstart, qend, sstart, send int, identity float64) SimilarityLink {
	qstart, qend = ascending(qstart, qend)
	sstart, send = ascending(sstart, send)
	return SimilarityLink{
		Target:       target,
		QueryStart:   qstart,
		QueryEnd:     qend,
		SubjectStart: sstart,
		SubjectEnd:   send,
		Identity:     identity,
	}
}

func ascending(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// GenomeRecord is the normalized view of one genome plus its outgoing links.
type GenomeRecord struct {
	ID     string
	Length int
	CDS    []CDSFeature
	Links  []SimilarityLink
}
