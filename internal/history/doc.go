// Package history records finished download outcomes in a local SQLite
// database. It exists for the history and stats commands only; the scheduler
// never reads from it, and queued work does not survive a restart.
package history
