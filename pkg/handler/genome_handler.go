package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

// GenomeResponse is one dataset record with its position in the default
// display order.
type GenomeResponse struct {
	ID       string                 `json:"id"`
	Position int                    `json:"position"`
	Length   int                    `json:"length"`
	CDS      []model.CDSFeature     `json:"cds"`
	Links    []model.SimilarityLink `json:"links"`
}

// GenomeHandler returns one genome of the loaded dataset.
func (pctx *PlotContext) GenomeHandler(w http.ResponseWriter, r *http.Request) {
	genomeID := r.PathValue("genome_id")

	rec, ok := pctx.Dataset.Get(genomeID)
	if !ok {
		logger.Debug("Genome not found", zap.String("genome", genomeID))
		http.Error(w, "Genome not found", http.StatusNotFound)
		return
	}

	position := 0
	for i, id := range pctx.Dataset.IDs() {
		if id == genomeID {
			position = i
			break
		}
	}

	writeJSON(w, http.StatusOK, GenomeResponse{
		ID:       rec.ID,
		Position: position,
		Length:   rec.Length,
		CDS:      rec.CDS,
		Links:    rec.Links,
	})
}
