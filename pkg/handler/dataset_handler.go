package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/model"
)

// DatasetAPI returns the loaded dataset in the intermediate JSON format.
func (pctx *PlotContext) DatasetAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := model.WriteJSON(w, pctx.Dataset); err != nil {
		logger.Error("Failed to encode dataset", zap.Error(err))
	}
}
