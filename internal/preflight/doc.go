// Package preflight validates the runtime environment before jobs are
// submitted: directory permissions and required external binaries.
package preflight
