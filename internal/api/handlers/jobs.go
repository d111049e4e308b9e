package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/folio/internal/scheduler"
	"github.com/wonny/folio/pkg/logger"
)

// JobRunner is the scheduler surface the ops endpoints expose.
type JobRunner interface {
	Stats() map[string]scheduler.JobStats
	History(jobName string) ([]scheduler.JobResult, error)
	RunNow(jobName string) error
}

// JobsHandler serves run statistics and on-demand triggering for
// scheduled jobs.
type JobsHandler struct {
	sched  JobRunner
	logger *logger.Logger
}

// NewJobsHandler creates the jobs ops handler.
func NewJobsHandler(sched JobRunner, log *logger.Logger) *JobsHandler {
	return &JobsHandler{sched: sched, logger: log}
}

// List reports run statistics for every registered job.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    h.sched.Stats(),
	})
}

// History returns one job's recorded runs, oldest first.
func (h *JobsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	results, err := h.sched.History(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    results,
	})
}

// Run triggers one job immediately, outside its schedule, and waits
// for the outcome.
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	err := h.sched.RunNow(name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		respondError(w, http.StatusNotFound, err.Error())
	case err != nil:
		h.logger.WithError(err).WithField("job", name).Error("On-demand job run failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	default:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]string{"job": name, "status": "completed"},
		})
	}
}
