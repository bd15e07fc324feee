package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/logger"
	"github.com/coafione/phage-genome-plotter/pkg/middle"
)

// StartBlastJob queues an all-vs-all BLAST run over the server's FASTA folder
// and answers 202 with the job id. Results land in the configured output
// folder and are picked up by the next build.
func (pctx *PlotContext) StartBlastJob(w http.ResponseWriter, r *http.Request) {
	if pctx.Blast == nil || pctx.Jobs == nil {
		http.Error(w, "BLAST is not configured on this server", http.StatusServiceUnavailable)
		return
	}
	log := middle.LoggerFrom(r.Context(), logger.L())

	job, ok := pctx.Jobs.NewJob()
	if !ok {
		writeJSON(w, http.StatusConflict, job)
		return
	}

	go pctx.runBlastJob(job.ID, log)

	log.Info("Queued BLAST job", zap.String("job_id", job.ID))
	w.Header().Set("Location", "/api/v1/blast/"+job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

func (pctx *PlotContext) runBlastJob(jobID string, log *zap.Logger) {
	pctx.Jobs.SetRunning(jobID)

	sum, err := pctx.Blast.Run(context.Background())
	if err != nil {
		log.Error("BLAST job failed", zap.String("job_id", jobID), zap.Error(err))
		pctx.Jobs.FailJob(jobID, sum, err)
		return
	}
	log.Info("BLAST job completed", zap.String("job_id", jobID), zap.Int("searches_run", sum.SearchesRun))
	pctx.Jobs.CompleteJob(jobID, sum)
}

// BlastJobHandler reports the state of one job.
func (pctx *PlotContext) BlastJobHandler(w http.ResponseWriter, r *http.Request) {
	if pctx.Jobs == nil {
		http.Error(w, "BLAST is not configured on this server", http.StatusServiceUnavailable)
		return
	}
	job, ok := pctx.Jobs.GetJob(r.PathValue("job_id"))
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
