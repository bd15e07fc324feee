package handler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coafione/phage-genome-plotter/pkg/blast"
)

// BlastJobStatus represents the lifecycle of an all-vs-all BLAST run.
type BlastJobStatus string

const (
	BlastJobQueued    BlastJobStatus = "queued"
	BlastJobRunning   BlastJobStatus = "running"
	BlastJobCompleted BlastJobStatus = "completed"
	BlastJobFailed    BlastJobStatus = "failed"
)

// BlastJob keeps track of one background run.
type BlastJob struct {
	ID        string         `json:"job_id"`
	Status    BlastJobStatus `json:"status"`
	Summary   *blast.Summary `json:"summary,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BlastJobManager stores job states indexed by job ID. At most one job is
// queued or running at a time since runs share the output folders.
type BlastJobManager struct {
	mu     sync.RWMutex
	jobs   map[string]*BlastJob
	active string
}

// NewBlastJobManager constructs a job manager with no jobs.
func NewBlastJobManager() *BlastJobManager {
	return &BlastJobManager{
		jobs: make(map[string]*BlastJob),
	}
}

// NewJob registers a queued job. It returns the running job and false when
// another one has not finished yet.
func (m *BlastJobManager) NewJob() (BlastJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, ok := m.jobs[m.active]; ok {
		return *job, false
	}

	now := time.Now()
	job := &BlastJob{
		ID:        uuid.NewString(),
		Status:    BlastJobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.jobs[job.ID] = job
	m.active = job.ID
	return *job, true
}

// SetRunning marks the job as running.
func (m *BlastJobManager) SetRunning(jobID string) {
	m.updateJob(jobID, func(job *BlastJob) {
		job.Status = BlastJobRunning
	})
}

// CompleteJob stores the run summary and marks the job complete.
func (m *BlastJobManager) CompleteJob(jobID string, sum blast.Summary) {
	m.updateJob(jobID, func(job *BlastJob) {
		job.Status = BlastJobCompleted
		job.Summary = &sum
	})
}

// FailJob records a failure and attaches a user-facing error message.
func (m *BlastJobManager) FailJob(jobID string, sum blast.Summary, err error) {
	m.updateJob(jobID, func(job *BlastJob) {
		job.Status = BlastJobFailed
		job.Summary = &sum
		job.Error = err.Error()
	})
}

// GetJob returns a snapshot of a job by ID.
func (m *BlastJobManager) GetJob(jobID string) (BlastJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return BlastJob{}, false
	}
	return *job, true
}

func (m *BlastJobManager) updateJob(jobID string, update func(job *BlastJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}

	update(job)
	job.UpdatedAt = time.Now()

	finished := job.Status == BlastJobCompleted || job.Status == BlastJobFailed
	if finished && m.active == jobID {
		m.active = ""
	}
}
