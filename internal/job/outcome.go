package job

import "time"

// Outcome is the terminal report for one job, produced exactly once per run.
// Files lists the final placed paths; cancelled and failed runs leave it empty.
type Outcome struct {
	JobID      string
	URL        string
	Title      string
	MediaType  MediaType
	Container  string
	Status     Status
	Reason     string
	Files      []string
	Bytes      int64
	Elapsed    time.Duration
	FinishedAt time.Time
}

// Succeeded reports whether the job reached Completed.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusCompleted
}
