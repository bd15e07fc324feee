// Handler for miscellaneous endpoints such as health check

package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

type HealthResponse struct {
	Health    string    `json:"health"`
	Genomes   int       `json:"genomes"`
	Links     int       `json:"links"`
	Timestamp time.Time `json:"timestamp"`
}

func (pctx *PlotContext) HealthCheck(w http.ResponseWriter, r *http.Request) {

	response := HealthResponse{
		Health:    "ok",
		Genomes:   pctx.Dataset.Len(),
		Links:     pctx.Dataset.LinkCount(),
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)

}
