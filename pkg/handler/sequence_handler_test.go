package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/pkg/db"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

func newSequenceContext(t *testing.T) *PlotContext {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"phiA.fasta": ">phiA\n" + strings.Repeat("ACGTTGCA", 125) + "\n",
		"phiB.fasta": ">phiB\nAACG" + strings.Repeat("T", 1196) + "\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	seqdb, err := db.NewSequenceDB(dir)
	if err != nil {
		t.Fatal(err)
	}

	pctx := newTestContext(t)
	pctx.SeqDB = seqdb
	phiB, _ := pctx.Dataset.Get("phiB")
	phiB.CDS = append(phiB.CDS, model.CDSFeature{Start: 0, End: 4, Strand: model.Reverse, Label: "rev"})
	return pctx
}

func TestSequenceHandlers(t *testing.T) {
	h := NewHandler(newSequenceContext(t), zap.NewNop())

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"region", "/sequence/by-region?genome_id=phiA&start=0&end=8", http.StatusOK, ">phiA:0-8\nACGTTGCA\n"},
		{"region wraps lines", "/sequence/by-region?genome_id=phiA&start=0&end=64", http.StatusOK,
			">phiA:0-64\n" + strings.Repeat("ACGTTGCA", 7) + "ACGT\nTGCA\n"},
		{"region out of range", "/sequence/by-region?genome_id=phiA&start=990&end=1010", http.StatusBadRequest, ""},
		{"region bad start", "/sequence/by-region?genome_id=phiA&start=x&end=8", http.StatusBadRequest, ""},
		{"region unknown genome", "/sequence/by-region?genome_id=phiZ&start=0&end=8", http.StatusNotFound, ""},
		{"forward cds", "/sequence/by-cds?genome_id=phiA&index=0", http.StatusOK, ""},
		{"reverse cds", "/sequence/by-cds?genome_id=phiB&index=0", http.StatusOK, ">phiB|cds_0 0-4(-) rev\nCGTT\n"},
		{"cds index out of range", "/sequence/by-cds?genome_id=phiA&index=3", http.StatusBadRequest, ""},
		{"cds unknown genome", "/sequence/by-cds?genome_id=phiZ&index=0", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, h, tt.target)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantBody != "" && rr.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestForwardCDSSequence(t *testing.T) {
	h := NewHandler(newSequenceContext(t), zap.NewNop())
	rr := serve(t, h, "/sequence/by-cds?genome_id=phiA&index=0")

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if lines[0] != ">phiA|cds_0 100-400(+) geneX" {
		t.Errorf("header = %q", lines[0])
	}
	seq := strings.Join(lines[1:], "")
	if len(seq) != 300 || !strings.HasPrefix(seq, "TGCAACGT") {
		t.Errorf("sequence length %d, prefix %q", len(seq), seq[:8])
	}
}

func TestSequencesNotConfigured(t *testing.T) {
	h := NewHandler(newTestContext(t), zap.NewNop())
	if rr := serve(t, h, "/sequence/by-region?genome_id=phiA&start=0&end=8"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestReverseComplement(t *testing.T) {
	tests := map[string]string{
		"ACGT":  "ACGT",
		"AACG":  "CGTT",
		"acgN":  "Ncgt",
		"":      "",
		"GATTR": "YAATC",
	}
	for in, want := range tests {
		if got := reverseComplement(in); got != want {
			t.Errorf("reverseComplement(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenomeHandler(t *testing.T) {
	h := NewHandler(newTestContext(t), zap.NewNop())

	rr := serve(t, h, "/api/v1/genomes/phiB")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		ID       string          `json:"id"`
		Position int             `json:"position"`
		Length   int             `json:"length"`
		CDS      json.RawMessage `json:"cds"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "phiB" || resp.Position != 1 || resp.Length != 1200 {
		t.Errorf("Unexpected genome %+v", resp)
	}

	rr = serve(t, h, "/api/v1/genomes/phiA")
	if !strings.Contains(rr.Body.String(), `[100,400,1,"geneX"]`) {
		t.Errorf("CDS not in dataset encoding: %s", rr.Body.String())
	}

	if rr := serve(t, h, "/api/v1/genomes/ghost"); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
