package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/coafione/phage-genome-plotter/pkg/blast"
	"github.com/coafione/phage-genome-plotter/pkg/config"
	"github.com/coafione/phage-genome-plotter/pkg/db"
)

// createFakeTool writes an executable bash script into dir.
func createFakeTool(t *testing.T, dir, name, body string) {
	t.Helper()
	content := "#!/usr/bin/env bash\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
}

const outArg = `while [ $# -gt 0 ]; do if [ "$1" = "-out" ]; then OUT="$2"; fi; shift; done`

func newBlastContext(t *testing.T, blastnBody string) (*PlotContext, config.Blast) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are bash scripts")
	}

	bin := t.TempDir()
	createFakeTool(t, bin, "makeblastdb", outArg+"\ntouch \"$OUT.nin\"")
	createFakeTool(t, bin, "blastn", blastnBody)
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	fastaDir := t.TempDir()
	for _, g := range []string{"phiA", "phiB"} {
		if err := os.WriteFile(filepath.Join(fastaDir, g+".fasta"), []byte(">"+g+"\nACGT\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	seqdb, err := db.NewSequenceDB(fastaDir)
	if err != nil {
		t.Fatal(err)
	}

	work := t.TempDir()
	opts := config.Default().Blast
	opts.OutputDir = filepath.Join(work, "blast_results")
	opts.DBDir = filepath.Join(work, "blastdb")

	pctx := newTestContext(t)
	pctx.Blast = blast.NewRunner(seqdb, opts)
	pctx.Jobs = NewBlastJobManager()
	return pctx, opts
}

// waitForJob polls the status endpoint until the job leaves the queue.
func waitForJob(t *testing.T, h http.Handler, id string) BlastJob {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rr := serve(t, h, "/api/v1/blast/"+id)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
		}
		var job BlastJob
		if err := json.Unmarshal(rr.Body.Bytes(), &job); err != nil {
			t.Fatal(err)
		}
		if job.Status == BlastJobCompleted || job.Status == BlastJobFailed {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return BlastJob{}
}

func startJob(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/blast", nil))
	return rr
}

func TestBlastJobLifecycle(t *testing.T) {
	pctx, opts := newBlastContext(t, outArg+"\nprintf 'phiA\\tphiB\\t99.0\\t4\\t0\\t0\\t1\\t4\\t1\\t4\\t0.0\\t8\\n' > \"$OUT\"")
	h := NewHandler(pctx, zap.NewNop())

	rr := startJob(t, h)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rr.Code, rr.Body.String())
	}
	var queued BlastJob
	if err := json.Unmarshal(rr.Body.Bytes(), &queued); err != nil {
		t.Fatal(err)
	}
	if queued.ID == "" || rr.Header().Get("Location") != "/api/v1/blast/"+queued.ID {
		t.Fatalf("Unexpected job response %+v, Location %q", queued, rr.Header().Get("Location"))
	}

	job := waitForJob(t, h, queued.ID)
	if job.Status != BlastJobCompleted {
		t.Fatalf("job status = %s: %s", job.Status, job.Error)
	}
	if job.Summary == nil || job.Summary.SearchesRun != 1 || job.Summary.DatabasesBuilt != 2 {
		t.Errorf("Unexpected summary %+v", job.Summary)
	}
	if _, err := os.Stat(filepath.Join(opts.OutputDir, "phiA_vs_phiB.txt")); err != nil {
		t.Errorf("Expected alignment output: %v", err)
	}

	// A finished job frees the slot; the rerun reuses every output.
	rr = startJob(t, h)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("second job status = %d, want 202", rr.Code)
	}
	var second BlastJob
	if err := json.Unmarshal(rr.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	job = waitForJob(t, h, second.ID)
	if job.Summary == nil || job.Summary.SearchesReused != 1 || job.Summary.SearchesRun != 0 {
		t.Errorf("Unexpected rerun summary %+v", job.Summary)
	}
}

func TestBlastJobFailure(t *testing.T) {
	pctx, _ := newBlastContext(t, "echo 'database missing' >&2\nexit 2")
	h := NewHandler(pctx, zap.NewNop())

	rr := startJob(t, h)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
	var queued BlastJob
	if err := json.Unmarshal(rr.Body.Bytes(), &queued); err != nil {
		t.Fatal(err)
	}

	job := waitForJob(t, h, queued.ID)
	if job.Status != BlastJobFailed || job.Error == "" {
		t.Errorf("Expected a failed job with an error, got %+v", job)
	}
}

func TestBlastJobsNotConfigured(t *testing.T) {
	h := NewHandler(newTestContext(t), zap.NewNop())

	if rr := startJob(t, h); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("POST status = %d, want 503", rr.Code)
	}
	if rr := serve(t, h, "/api/v1/blast/abc"); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("GET status = %d, want 503", rr.Code)
	}
}

func TestBlastJobManager(t *testing.T) {
	m := NewBlastJobManager()

	first, ok := m.NewJob()
	if !ok || first.Status != BlastJobQueued {
		t.Fatalf("NewJob() = %+v, %v", first, ok)
	}
	busy, ok := m.NewJob()
	if ok || busy.ID != first.ID {
		t.Errorf("Expected the active job back while it runs, got %+v, %v", busy, ok)
	}

	m.SetRunning(first.ID)
	if job, _ := m.GetJob(first.ID); job.Status != BlastJobRunning {
		t.Errorf("status = %s, want running", job.Status)
	}
	m.CompleteJob(first.ID, blast.Summary{SearchesRun: 3})
	job, _ := m.GetJob(first.ID)
	if job.Status != BlastJobCompleted || job.Summary.SearchesRun != 3 {
		t.Errorf("Unexpected completed job %+v", job)
	}

	if _, ok := m.GetJob("missing"); ok {
		t.Error("GetJob should miss unknown ids")
	}
	if _, ok := m.NewJob(); !ok {
		t.Error("NewJob should succeed once the active job finished")
	}
}
