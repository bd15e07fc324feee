package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/pkg/middle"
)

// NewRouter wires the serve-mode routes.
func NewRouter(pctx *PlotContext) *http.ServeMux {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Main routes
	mux.HandleFunc("GET /{$}", pctx.MainPage)
	mux.HandleFunc("GET /plot", pctx.PlotHandler)

	// API routes
	mux.HandleFunc("GET /api/v1/health", pctx.HealthCheck)
	mux.HandleFunc("GET /api/v1/dataset", pctx.DatasetAPI)
	mux.HandleFunc("GET /api/v1/genomes/{genome_id}", pctx.GenomeHandler)
	mux.HandleFunc("POST /api/v1/blast", pctx.StartBlastJob)
	mux.HandleFunc("GET /api/v1/blast/{job_id}", pctx.BlastJobHandler)

	// Get sequences
	mux.HandleFunc("GET /sequence/by-region", pctx.GetRegionSequenceHandler)
	mux.HandleFunc("GET /sequence/by-cds", pctx.GetCDSSequenceHandler)

	if pctx.Metrics != nil {
		mux.Handle("GET /metrics", pctx.Metrics.Handler())
	}

	return mux
}

// NewHandler is the router behind request-id, logging and metrics middleware.
func NewHandler(pctx *PlotContext, log *zap.Logger) http.Handler {
	mws := []middle.Middleware{
		middle.RequestIDMiddleware(log),
		middle.LoggingMiddleware(log),
	}
	if pctx.Metrics != nil {
		mws = append(mws, middle.MetricsMiddleware(pctx.Metrics))
	}
	return middle.Chain(NewRouter(pctx), mws...)
}
