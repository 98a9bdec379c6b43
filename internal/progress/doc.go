// Package progress turns raw extractor output into a normalized per-job
// event stream. Each job owns one bridge; subscribers read lifecycle
// checkpoints, download percents, and a single closing terminal event.
package progress
