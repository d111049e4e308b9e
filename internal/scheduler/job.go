package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work.
type Job interface {
	// Name identifies the job; unique per scheduler.
	Name() string

	// Run executes the job.
	Run(ctx context.Context) error

	// Schedule returns the cron expression, seconds included.
	// Examples: "0 0 6 * * *", "@daily", "@hourly"
	Schedule() string
}

// JobResult records one run of a job.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// historyLimit bounds the per-job run records.
const historyLimit = 100

// runHistory is a bounded list of run results, oldest first.
// Callers hold the scheduler's lock.
type runHistory struct {
	results []JobResult
}

func (h *runHistory) add(result JobResult) {
	h.results = append(h.results, result)
	if len(h.results) > historyLimit {
		h.results = h.results[len(h.results)-historyLimit:]
	}
}

func (h *runHistory) stats(jobName, schedule string) JobStats {
	st := JobStats{
		JobName:   jobName,
		Schedule:  schedule,
		TotalRuns: len(h.results),
	}
	for i := range h.results {
		r := h.results[i]
		start := r.StartTime
		if r.Success {
			st.SuccessCount++
			st.LastSuccess = &start
		} else {
			st.FailureCount++
			st.LastFailure = &start
		}
	}
	if n := len(h.results); n > 0 {
		last := h.results[n-1].StartTime
		st.LastRun = &last
		st.SuccessRate = float64(st.SuccessCount) / float64(n)
	}
	return st
}
