package domain

import "time"

// JobStatus enumerates the lifecycle states of a generation task.
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusSuccess JobStatus = "success"
	JobStatusFailed  JobStatus = "failed"
	JobStatusTimeout JobStatus = "timeout"
)

// Terminal reports whether no further polling can change the status.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusSuccess, JobStatusFailed, JobStatusTimeout:
		return true
	default:
		return false
	}
}

// Job is the descriptor for a single submitted task. It is created on
// submission and only mutated by polling.
type Job struct {
	TaskID      string
	Status      JobStatus
	ResultURL   string
	Attempts    int
	SubmittedAt time.Time
	FinishedAt  time.Time
}

// NewJob returns a pending descriptor for a freshly submitted task.
func NewJob(taskID string, now time.Time) *Job {
	return &Job{TaskID: taskID, Status: JobStatusPending, SubmittedAt: now}
}

// Finish moves the job into a terminal state.
func (j *Job) Finish(status JobStatus, resultURL string, now time.Time) {
	if j == nil || j.Status.Terminal() {
		return
	}
	j.Status = status
	j.ResultURL = resultURL
	j.FinishedAt = now
}
