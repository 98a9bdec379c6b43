// Package staging manages the hidden per-job sandbox namespace that lives
// under the destination directory while downloads are in flight. It owns the
// path layout, the advisory lock shared between executors and the cleaner,
// and the orphan cleanup pass.
package staging
