package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/coafione/phage-genome-plotter/pkg/db"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

const fastaLineWidth = 60

// GetRegionSequenceHandler returns bases [start, end) of one genome as FASTA.
func (pctx *PlotContext) GetRegionSequenceHandler(w http.ResponseWriter, r *http.Request) {
	if pctx.SeqDB == nil {
		http.Error(w, "Sequences are not configured on this server", http.StatusServiceUnavailable)
		return
	}

	genomeID := r.URL.Query().Get("genome_id")
	start, errStart := strconv.Atoi(r.URL.Query().Get("start"))
	end, errEnd := strconv.Atoi(r.URL.Query().Get("end"))

	var errorMessages []string
	if genomeID == "" {
		errorMessages = append(errorMessages, "Missing genome_id")
	}
	if errStart != nil {
		errorMessages = append(errorMessages, "Invalid start value")
	}
	if errEnd != nil {
		errorMessages = append(errorMessages, "Invalid end value")
	}
	if len(errorMessages) > 0 {
		// Join all error messages into a single response
		http.Error(w, strings.Join(errorMessages, "; "), http.StatusBadRequest)
		return
	}

	seq, err := pctx.SeqDB.Region(genomeID, start, end)
	if err != nil {
		sequenceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writeFASTA(w, fmt.Sprintf("%s:%d-%d", genomeID, start, end), seq)
}

// GetCDSSequenceHandler returns one CDS of the loaded dataset as FASTA, in
// coding orientation.
func (pctx *PlotContext) GetCDSSequenceHandler(w http.ResponseWriter, r *http.Request) {
	if pctx.SeqDB == nil {
		http.Error(w, "Sequences are not configured on this server", http.StatusServiceUnavailable)
		return
	}

	genomeID := r.URL.Query().Get("genome_id")
	rec, ok := pctx.Dataset.Get(genomeID)
	if !ok {
		http.Error(w, "Genome not found", http.StatusNotFound)
		return
	}
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil || index < 0 || index >= len(rec.CDS) {
		http.Error(w, fmt.Sprintf("index must be in [0, %d)", len(rec.CDS)), http.StatusBadRequest)
		return
	}
	cds := rec.CDS[index]

	seq, err := pctx.SeqDB.Region(genomeID, cds.Start, cds.End)
	if err != nil {
		sequenceError(w, err)
		return
	}
	if cds.Strand == model.Reverse {
		seq = reverseComplement(seq)
	}

	header := fmt.Sprintf("%s|cds_%d %d-%d(%s)", genomeID, index, cds.Start, cds.End, cds.Strand)
	if cds.Label != "" {
		header += " " + cds.Label
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writeFASTA(w, header, seq)
}

func sequenceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNoSequence):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, db.ErrBadRegion):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeFASTA(w io.Writer, header, seq string) {
	fmt.Fprintf(w, ">%s\n", header)
	for len(seq) > fastaLineWidth {
		fmt.Fprintln(w, seq[:fastaLineWidth])
		seq = seq[fastaLineWidth:]
	}
	if seq != "" {
		fmt.Fprintln(w, seq)
	}
}

var complement = strings.NewReplacer(
	"A", "T", "T", "A", "C", "G", "G", "C",
	"a", "t", "t", "a", "c", "g", "g", "c",
	"R", "Y", "Y", "R", "K", "M", "M", "K",
	"B", "V", "V", "B", "D", "H", "H", "D",
)

func reverseComplement(seq string) string {
	b := []byte(complement.Replace(seq))
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
