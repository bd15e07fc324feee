package db

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coafione/phage-genome-plotter/pkg/model"
)

func TestAnnotationDBFilesPreference(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"phiA.gff":  "",
		"phiA.gbk":  "",
		"phiB.gff3": "",
		"phiB.gff":  "",
		"phiC.txt":  "",
	})
	adb, err := NewAnnotationDB(dir)
	if err != nil {
		t.Fatal(err)
	}
	files, err := adb.Files()
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"phiA": filepath.Join(dir, "phiA.gbk"),
		"phiB": filepath.Join(dir, "phiB.gff3"),
	}
	if len(files) != len(want) {
		t.Fatalf("Files() = %v", files)
	}
	for id, path := range want {
		if files[id] != path {
			t.Errorf("Files()[%s] = %s, want %s", id, files[id], path)
		}
	}
}

func TestAnnotationDBLoad(t *testing.T) {
	annDir := writeFiles(t, map[string]string{
		"phiA.gbk": phiAGenBank,
		"phiB.gbk": phiBGenBank,
		"phiC.gff": phiCGFF,
		"phiX.gbk": "garbage that would fail to parse",
	})
	seqDir := writeFiles(t, map[string]string{
		"phiC.fasta": ">phiC\n" + strings.Repeat("ACGTACGTAC", 100) + "\n",
	})

	adb, _ := NewAnnotationDB(annDir)
	seqdb, _ := NewSequenceDB(seqDir)

	records, err := adb.Load(model.NewIDSet("phiA", "phiB", "phiC"), seqdb)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, id := range []string{"phiA", "phiB", "phiC"} {
		if records[i].ID != id {
			t.Errorf("records[%d] = %s, want %s", i, records[i].ID, id)
		}
	}
	if records[2].Length != 1000 {
		t.Errorf("phiC length = %d, want 1000 from FASTA", records[2].Length)
	}
}

func TestAnnotationDBLoadMalformed(t *testing.T) {
	bad := `LOCUS       phiA   20 bp    DNA
FEATURES             Location/Qualifiers
     CDS             5..50
ORIGIN
        1 acgtacgtac acgtacgtac
//
`
	dir := writeFiles(t, map[string]string{"phiA.gbk": bad})
	adb, _ := NewAnnotationDB(dir)

	_, err := adb.Load(model.NewIDSet("phiA"), nil)
	var mre *model.MalformedRecordError
	if !errors.As(err, &mre) {
		t.Fatalf("error = %v, want MalformedRecordError", err)
	}
	if mre.ID != "phiA" || mre.Feature != 0 {
		t.Errorf("error context = %+v", mre)
	}
}

func TestAnnotationDBGFFNeedsSequences(t *testing.T) {
	dir := writeFiles(t, map[string]string{"phiC.gff": phiCGFF})
	adb, _ := NewAnnotationDB(dir)
	if _, err := adb.Load(model.NewIDSet("phiC"), nil); !errors.Is(err, ErrNoSequence) {
		t.Errorf("error = %v, want ErrNoSequence", err)
	}
}
