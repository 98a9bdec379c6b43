// Package scheduler admits download jobs under a fixed concurrency bound and
// owns the per-job registry between submission and the terminal event. Cancel
// requests route by job ID to a cooperative flag; a job cancelled while still
// queued reports Cancelled without ever starting its executor.
package scheduler
