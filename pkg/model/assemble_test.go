package model

import (
	"io"
	"strings"
	"testing"
)

func memAlignment(name, body string) AlignmentSource {
	return AlignmentSource{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func TestAssemble(t *testing.T) {
	recA, err := Normalize(AnnotatedRecord{
		ID:       "A",
		Length:   1000,
		Features: []AnnotatedFeature{cds(100, 400, 1, map[string][]string{"gene": {"geneX"}})},
	})
	if err != nil {
		t.Fatal(err)
	}
	recB, err := Normalize(AnnotatedRecord{
		ID:       "B",
		Length:   1200,
		Features: []AnnotatedFeature{cds(200, 500, -1, nil)},
	})
	if err != nil {
		t.Fatal(err)
	}
	recX := &GenomeRecord{ID: "X", Length: 50}

	alignments := []AlignmentSource{
		memAlignment("A_vs_B.txt", blastLine("95", "350", "50", "100", "400")),
		memAlignment("A_vs_X.txt", blastLine("99", "1", "300", "1", "300")),
		memAlignment("notes.txt", blastLine("99", "1", "300", "1", "300")),
		memAlignment("B_vs_Q.txt", blastLine("99", "1", "300", "1", "300")),
	}

	ds, report, err := Assemble(NewIDSet("A", "B"), []*GenomeRecord{recA, recB, recX}, alignments, defaultFilter)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if ds.Has("X") {
		t.Error("X is not recognized and must be excluded")
	}
	if ds.Len() != 2 {
		t.Fatalf("dataset has %d genomes, want 2", ds.Len())
	}
	if report.AlignmentsUsed != 1 || report.AlignmentsSkipped != 3 || report.Links != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if len(report.Excluded) != 1 || report.Excluded[0] != "X" {
		t.Errorf("excluded = %v", report.Excluded)
	}

	a, _ := ds.Get("A")
	if len(a.Links) != 1 {
		t.Fatalf("A has %d links, want 1", len(a.Links))
	}
	want := SimilarityLink{Target: "B", QueryStart: 50, QueryEnd: 350, SubjectStart: 100, SubjectEnd: 400, Identity: 95.0}
	if a.Links[0] != want {
		t.Errorf("link = %+v, want %+v", a.Links[0], want)
	}

	b, _ := ds.Get("B")
	if len(b.Links) != 0 {
		t.Errorf("no back-link may be created, B has %d", len(b.Links))
	}
}

func TestAssembleDuplicateRecord(t *testing.T) {
	recs := []*GenomeRecord{{ID: "A", Length: 10}, {ID: "A", Length: 20}}
	if _, _, err := Assemble(NewIDSet("A"), recs, nil, defaultFilter); err == nil {
		t.Fatal("expected duplicate record error")
	}
}

func TestIDSetSorted(t *testing.T) {
	s := NewIDSet("c", "a", "b")
	got := s.Sorted()
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("Sorted() = %v", got)
	}
}
